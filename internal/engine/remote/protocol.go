package remote

import (
	"errors"
	"fmt"

	"github.com/specialistvlad/primcall/internal/engine"
)

// Error codes a runtime may attach to a failed response.
const (
	codeModuleNotFound = "module_not_found"
	codeSymbolNotFound = "symbol_not_found"
)

type response struct {
	id    string
	value float64
	err   error
}

func encodeRequest(id, module, symbol string, args []float64) map[string]any {
	payload := make([]any, len(args))
	for i, a := range args {
		payload[i] = a
	}
	return map[string]any{
		"id":     id,
		"module": module,
		"symbol": symbol,
		"args":   payload,
	}
}

// decodeResponse reads the first event argument. Numbers arrive as float64
// from the JSON parser.
func decodeResponse(data []any) (response, error) {
	if len(data) == 0 {
		return response{}, errors.New("result event carried no payload")
	}
	body, ok := data[0].(map[string]any)
	if !ok {
		return response{}, fmt.Errorf("result payload must be an object, got %T", data[0])
	}
	id, ok := body["id"].(string)
	if !ok || id == "" {
		return response{}, errors.New("result payload has no id")
	}

	if msg, failed := body["error"]; failed && msg != nil {
		code, _ := body["code"].(string)
		return response{id: id, err: remoteError(code, fmt.Sprint(msg))}, nil
	}

	switch v := body["value"].(type) {
	case float64:
		return response{id: id, value: v}, nil
	case nil:
		return response{id: id, err: errors.New("remote result has no value")}, nil
	default:
		return response{id: id, err: fmt.Errorf("remote result value must be a number, got %T", v)}, nil
	}
}

func remoteError(code, msg string) error {
	switch code {
	case codeModuleNotFound:
		return fmt.Errorf("%w: %s", engine.ErrModuleNotFound, msg)
	case codeSymbolNotFound:
		return fmt.Errorf("%w: %s", engine.ErrSymbolNotFound, msg)
	default:
		return fmt.Errorf("remote engine: %s", msg)
	}
}
