package bloom

import (
	"encoding/json"
	"fmt"

	"github.com/forestrie/go-bloomfilter/bitarray"
	"github.com/forestrie/go-bloomfilter/hashers"
)

type jsonForm struct {
	BitArray *bitarray.BitArray `json:"bit_array"`
	Hashers  hashers.HasherList `json:"hashers"`
}

type jsonRawForm struct {
	BitArray json.RawMessage `json:"bit_array"`
	Hashers  json.RawMessage `json:"hashers"`
}

// MarshalJSON returns {"bit_array":{"len","arr"},"hashers":{"algo","count","max"}}.
func (f *Filter) MarshalJSON() ([]byte, error) {
	return json.Marshal(jsonForm{BitArray: f.ba, Hashers: f.hashers})
}

// UnmarshalJSON replaces f with the decoded filter using the default digest
// provider. Use FromJSON to choose a provider. On error f is unchanged.
func (f *Filter) UnmarshalJSON(data []byte) error {
	decoded, err := FromJSON(data)
	if err != nil {
		return err
	}
	*f = *decoded
	return nil
}

// FromJSON decodes the form produced by MarshalJSON. Only WithProvider is
// consulted from opts.
func FromJSON(data []byte, opts ...Option) (*Filter, error) {
	o := newOptions(opts)
	var raw jsonRawForm
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadJSON, err)
	}
	if raw.BitArray == nil || raw.Hashers == nil {
		return nil, fmt.Errorf("%w: bit_array and hashers are required", ErrBadJSON)
	}
	ba, err := bitarray.FromJSON(raw.BitArray)
	if err != nil {
		return nil, err
	}
	hl, err := hashers.FromJSON(raw.Hashers, o.hasherOpts()...)
	if err != nil {
		return nil, err
	}
	if ba.Len() != hl.Max() {
		return nil, fmt.Errorf("%w: %d bits, max %d", ErrSizeMismatch, ba.Len(), hl.Max())
	}
	return &Filter{ba: ba, hashers: hl}, nil
}
