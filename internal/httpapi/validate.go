package httpapi

import (
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/thedevsaddam/govalidator"

	"tetherworker/pkg/types"
)

// decodeErrorKey is where govalidator reports body decode failures.
const decodeErrorKey = "_error"

func init() {
	// present_string accepts any string, empty included; only absent or
	// non-string values fail.
	govalidator.AddCustomRule("present_string", func(field, rule, message string, value interface{}) error {
		switch value.(type) {
		case nil:
			return fmt.Errorf("The %s field is required", field)
		case string:
			return nil
		}
		return fmt.Errorf("The %s field must be a string", field)
	})
	// lax_int accepts integers, integral floats (5.0) and integer strings ("5").
	govalidator.AddCustomRule("lax_int", func(field, rule, message string, value interface{}) error {
		if value == nil {
			return nil
		}
		if _, ok := laxInt(value); !ok {
			return fmt.Errorf("The %s field must be an integer", field)
		}
		return nil
	})
}

var inferRules = govalidator.MapData{
	"model":      []string{"present_string"},
	"prompt":     []string{"present_string"},
	"max_tokens": []string{"lax_int"},
}

// decodeInferRequest reads and validates the /infer body. A non-empty decodeErr
// means the body was not a JSON object; fields lists missing or mistyped values.
func decodeInferRequest(r *http.Request) (req types.InferRequest, decodeErr string, fields url.Values) {
	body := map[string]interface{}{}
	errs := govalidator.New(govalidator.Options{
		Request:         r,
		Data:            &body,
		Rules:           inferRules,
		RequiredDefault: true,
	}).ValidateJSON()
	if msg := errs.Get(decodeErrorKey); msg != "" {
		return req, msg, nil
	}
	// the flattened view can pick up keys from nested objects; check the top level too
	for _, k := range []string{"model", "prompt"} {
		if _, ok := body[k].(string); !ok && errs.Get(k) == "" {
			errs.Add(k, fmt.Sprintf("The %s field must be a string", k))
		}
	}
	if v, ok := body["max_tokens"]; ok && v == nil {
		errs.Add("max_tokens", "The max_tokens field must be an integer")
	}
	if len(errs) > 0 {
		return req, "", errs
	}

	req = types.InferRequest{
		Model:     body["model"].(string),
		Prompt:    body["prompt"].(string),
		MaxTokens: types.DefaultMaxTokens,
	}
	if v, ok := body["max_tokens"]; ok {
		req.MaxTokens, _ = laxInt(v)
	}
	return req, "", nil
}

func laxInt(v interface{}) (int, bool) {
	switch n := v.(type) {
	case float64:
		if n != math.Trunc(n) || n < math.MinInt || n >= math.MaxInt {
			return 0, false
		}
		return int(n), true
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(n))
		return i, err == nil
	}
	return 0, false
}
