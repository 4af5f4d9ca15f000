package filterstore

import (
	"errors"

	azStorageBlob "github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
)

// blobNotFoundCode is the azure storage error code for a missing blob.
const blobNotFoundCode = "BlobNotFound"

func storageErrorCode(err error) string {
	var ierr *azStorageBlob.InternalError
	if !errors.As(err, &ierr) || ierr == nil {
		return ""
	}
	serr := &azStorageBlob.StorageError{}
	if !ierr.As(&serr) {
		return ""
	}
	return string(serr.ErrorCode)
}

// IsBlobNotFound reports whether err means the blob does not exist, either
// because it wraps ErrNotFound or because the azure sdk says so.
func IsBlobNotFound(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, ErrNotFound) || storageErrorCode(err) == blobNotFoundCode
}
