package testutil

import "encoding/json"

func jsonInto(doc string, out any) error {
	if out == nil {
		return nil
	}
	return json.Unmarshal([]byte(doc), out)
}
