package export

import (
	"encoding/json"
	"errors"
	"fmt"

	qrcode "github.com/skip2/go-qrcode"

	"github.com/piwi3910/presettab/internal/model"
)

// ErrShareTooLarge is returned when the overrides do not fit into one QR code.
var ErrShareTooLarge = errors.New("overrides too large for a QR code")

// shareCapacity is the byte-mode capacity of a version 40 QR code at medium
// error correction.
const shareCapacity = 2331

// SharePayload encodes overrides as a JSON object of option key to value.
func SharePayload(overrides *model.Layer) ([]byte, error) {
	opts := make(map[string]any, overrides.Len())
	for _, key := range overrides.Keys() {
		v, err := overrides.Get(key)
		if err != nil {
			return nil, err
		}
		opts[key] = model.Raw(v)
	}
	data, err := json.Marshal(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal overrides: %w", err)
	}
	return data, nil
}

// ShareQR renders the share payload of overrides as a size x size PNG QR code.
func ShareQR(overrides *model.Layer, size int) ([]byte, error) {
	data, err := SharePayload(overrides)
	if err != nil {
		return nil, err
	}
	if len(data) > shareCapacity {
		return nil, fmt.Errorf("%w: %d bytes", ErrShareTooLarge, len(data))
	}
	png, err := qrcode.Encode(string(data), qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("failed to generate QR code: %w", err)
	}
	return png, nil
}

// DecodeShare parses a share payload back into a layer, checking every key
// and value against schema.
func DecodeShare(schema *model.Schema, payload []byte) (*model.Layer, error) {
	var opts map[string]any
	if err := json.Unmarshal(payload, &opts); err != nil {
		return nil, fmt.Errorf("invalid share payload: %w", err)
	}
	l := model.NewLayer()
	var errs []error
	for key, raw := range opts {
		def, ok := schema.Def(key)
		if !ok {
			errs = append(errs, fmt.Errorf("unknown %s option %q", schema.Type, key))
			continue
		}
		v, err := model.Coerce(def.Kind, raw)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", key, err))
			continue
		}
		l.Set(key, v)
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return l, nil
}
