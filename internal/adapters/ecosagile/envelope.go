package ecosagile

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/okian/salesdash/internal/domain/model"
)

const failCode = "FAIL"

// Envelope is the normalized result of an API call.
type Envelope struct {
	Success bool
	Error   string
	Rows    []map[string]string
}

type rawEnvelope struct {
	Table struct {
		Error *struct {
			Code        string `json:"CODE"`
			UserMessage string `json:"USERMESSAGE"`
			Message     string `json:"MESSAGE"`
		} `json:"ECOSAGILE_ERROR_MESSAGE"`
		Data *struct {
			Row json.RawMessage `json:"ECOSAGILE_DATA_ROW"`
		} `json:"ECOSAGILE_DATA"`
	} `json:"ECOSAGILE_TABLE_DATA"`
}

// decodeEnvelope normalizes a response body. A single row object becomes a
// one-element list.
func decodeEnvelope(body []byte) (Envelope, error) {
	var raw rawEnvelope
	if err := json.Unmarshal(body, &raw); err != nil {
		return Envelope{}, fmt.Errorf("%w: ecosagile response: %w", model.ErrParse, err)
	}

	if e := raw.Table.Error; e != nil && e.Code == failCode {
		msg := e.UserMessage
		if msg == "" {
			msg = e.Message
		}
		if msg == "" {
			msg = "EcosAgile Error"
		}
		return Envelope{Error: msg}, nil
	}

	env := Envelope{Success: true, Rows: []map[string]string{}}
	if raw.Table.Data == nil || len(raw.Table.Data.Row) == 0 || string(raw.Table.Data.Row) == "null" {
		return env, nil
	}

	var list []map[string]any
	if err := json.Unmarshal(raw.Table.Data.Row, &list); err != nil {
		var single map[string]any
		if err := json.Unmarshal(raw.Table.Data.Row, &single); err != nil {
			return Envelope{}, fmt.Errorf("%w: ecosagile data row: %w", model.ErrParse, err)
		}
		list = []map[string]any{single}
	}
	for _, r := range list {
		env.Rows = append(env.Rows, stringify(r))
	}
	return env, nil
}

func stringify(row map[string]any) map[string]string {
	out := make(map[string]string, len(row))
	for k, v := range row {
		switch t := v.(type) {
		case nil:
			out[k] = ""
		case string:
			out[k] = t
		case float64:
			out[k] = strconv.FormatFloat(t, 'f', -1, 64)
		case bool:
			out[k] = strconv.FormatBool(t)
		default:
			b, _ := json.Marshal(t)
			out[k] = string(b)
		}
	}
	return out
}
