package utils

import (
	"os"

	jsoniter "github.com/json-iterator/go"
)

var Json = jsoniter.ConfigCompatibleWithStandardLibrary

// WriteJsonToFile writes src as indented json to dst, returning false on failure.
func WriteJsonToFile(dst string, src interface{}) bool {
	data, err := Json.MarshalIndent(src, "", "  ")
	if err != nil {
		Log.Errorf("failed convert Conf to []byte: %s", err.Error())
		return false
	}
	err = os.WriteFile(dst, data, 0o777)
	if err != nil {
		Log.Errorf("failed to write json file: %s", err.Error())
		return false
	}
	return true
}

// MustMarshalString is used for payloads built from plain structs and maps,
// where marshalling cannot fail.
func MustMarshalString(v interface{}) string {
	s, err := Json.MarshalToString(v)
	if err != nil {
		Log.Errorf("failed to marshal %T: %+v", v, err)
		return ""
	}
	return s
}
