package common

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/kaptinlin/jsonrepair"
)

// ParseJSON extracts the outermost JSON object from an LLM response and
// unmarshals it into T. Markdown fences and surrounding prose are dropped;
// malformed objects get one repair attempt before giving up.
func ParseJSON[T any](response string) (T, error) {
	var zero T

	start := strings.IndexByte(response, '{')
	if start == -1 {
		return zero, errors.New("no JSON object found in response (missing '{')")
	}
	jsonStr := response[start:]
	if end := strings.LastIndexByte(jsonStr, '}'); end != -1 {
		jsonStr = jsonStr[:end+1]
	}

	var result T
	err := json.Unmarshal([]byte(jsonStr), &result)
	if err == nil {
		return result, nil
	}

	repaired, repairErr := jsonrepair.JSONRepair(jsonStr)
	if repairErr != nil {
		return zero, fmt.Errorf("failed to unmarshal JSON: %w\nData: %s", err, jsonStr)
	}
	if err := json.Unmarshal([]byte(repaired), &result); err != nil {
		return zero, fmt.Errorf("failed to unmarshal repaired JSON: %w\nData: %s", err, repaired)
	}
	return result, nil
}
