package hashers

import (
	"encoding/json"
	"fmt"
)

type jsonForm struct {
	Algo  *string `json:"algo"`
	Count *int64  `json:"count"`
	Max   *int64  `json:"max"`
}

func (h HasherList) MarshalJSON() ([]byte, error) {
	algo, count, max := h.algo, int64(h.count), int64(h.max)
	return json.Marshal(jsonForm{Algo: &algo, Count: &count, Max: &max})
}

// FromJSON rebuilds a HasherList from {"algo","count","max"}. The triple is
// validated exactly as New validates it.
func FromJSON(data []byte, opts ...Option) (HasherList, error) {
	var form jsonForm
	if err := json.Unmarshal(data, &form); err != nil {
		return HasherList{}, fmt.Errorf("%w: %v", ErrBadJSON, err)
	}
	if form.Algo == nil || form.Count == nil || form.Max == nil {
		return HasherList{}, fmt.Errorf("%w: algo, count and max are required", ErrBadJSON)
	}
	count, max := *form.Count, *form.Max
	if count != int64(int(count)) || max != int64(int(max)) {
		return HasherList{}, fmt.Errorf("%w: count or max overflows int", ErrMaxTooLarge)
	}
	return New(*form.Algo, int(count), int(max), opts...)
}
