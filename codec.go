package depot

import (
	"github.com/goccy/go-json"
	"github.com/rotisserie/eris"
)

func encodeValue(v any) (json.RawMessage, error) {
	bz, err := json.Marshal(v)
	if err != nil {
		return nil, eris.Wrapf(err, "failed to encode %T", v)
	}
	return bz, nil
}

func decodeValue[T any](bz json.RawMessage) (T, error) {
	v := new(T)
	if err := json.Unmarshal(bz, v); err != nil {
		return *v, eris.Wrapf(err, "failed to decode %T", *v)
	}
	return *v, nil
}
