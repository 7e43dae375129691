// Package response decodes the classic controller response envelope.
//
// Every JSON endpoint wraps its payload the same way:
//
//	{"meta": {"rc": "ok"}, "data": [ ... ]}
//
// A non-"ok" rc signals an application-level failure even on HTTP 200.
package response

import (
	"encoding/json"

	"github.com/cockroachdb/errors"
)

// Meta is the status block present on every controller response.
type Meta struct {
	RC      string `json:"rc"`
	Message string `json:"msg,omitempty"`
}

type envelope struct {
	Meta Meta            `json:"meta"`
	Data json.RawMessage `json:"data"`
}

// Unmarshal decodes a controller response body into a slice of T.
// It fails if the envelope is malformed or meta.rc is not "ok".
func Unmarshal[T any](body []byte) ([]T, error) {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, errors.Wrap(err, "malformed controller response")
	}

	if env.Meta.RC != "ok" {
		if env.Meta.Message != "" {
			return nil, errors.Newf("controller error: rc=%s msg=%s", env.Meta.RC, env.Meta.Message)
		}
		return nil, errors.Newf("controller error: rc=%s", env.Meta.RC)
	}

	if len(env.Data) == 0 {
		return nil, nil
	}

	var out []T
	if err := json.Unmarshal(env.Data, &out); err != nil {
		return nil, errors.Wrap(err, "malformed controller payload")
	}

	return out, nil
}
