package imageproc

import "errors"

var (
	// ErrUnsupportedAssetType means the declared media type is not an image.
	ErrUnsupportedAssetType = errors.New("unsupported asset type")
	// ErrDecodeFailure means the payload could not be decoded as an image.
	ErrDecodeFailure = errors.New("decode failure")
	// ErrEncodeFailure means the resized image could not be re-encoded.
	ErrEncodeFailure = errors.New("encode failure")
)
