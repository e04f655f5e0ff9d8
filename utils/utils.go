package utils

import (
	"fmt"
	"os"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"sigs.k8s.io/yaml"
)

// Ternary returns a if cond is true, otherwise b.
func Ternary(cond bool, a, b any) any {
	if cond {
		return a
	}
	return b
}

// Unmarshal serializes and deserializes any from into the object
// return error if occurred
func Unmarshal(from, object any) error {
	reformatted := reformatInnerMaps(from)
	b, err := json.Marshal(reformatted)
	if err != nil {
		return fmt.Errorf("error marshalling object: %s", err)
	}
	err = json.Unmarshal(b, object)
	if err != nil {
		return fmt.Errorf("error unmarshalling from object: %s", err)
	}

	return nil
}

// UnmarshalFile reads a JSON or YAML file into dest.
func UnmarshalFile(file string, dest any) error {
	if err := CheckIfFilesExists(file); err != nil {
		return err
	}
	data, err := os.ReadFile(file)
	if err != nil {
		return fmt.Errorf("failed to read file [%s]: %s", file, err)
	}

	// YAMLToJSON is a no-op on JSON input
	jsonRaw, err := yaml.YAMLToJSON(data)
	if err != nil {
		return fmt.Errorf("failed to parse file [%s]: %s", file, err)
	}

	var decoded any
	if err := json.Unmarshal(jsonRaw, &decoded); err != nil {
		return fmt.Errorf("failed to unmarshal file [%s]: %s", file, err)
	}
	return Unmarshal(decoded, dest)
}

func CheckIfFilesExists(files ...string) error {
	for _, file := range files {
		if _, err := os.Stat(file); err != nil {
			return fmt.Errorf("file not accessible [%s]: %s", file, err)
		}
	}
	return nil
}

func IsValidSubcommand(available []*cobra.Command, sub string) bool {
	_, found := ArrayContains(available, func(command *cobra.Command) bool {
		return command.Use == sub
	})
	return found
}

func ArrayContains[T any](set []T, match func(elem T) bool) (int, bool) {
	for i, elem := range set {
		if match(elem) {
			return i, true
		}
	}
	return -1, false
}

// reformatInnerMaps converts map[any]any into map[string]any recursively so
// arbitrary decoded structures survive a JSON round trip.
func reformatInnerMaps(valueI any) any {
	switch value := valueI.(type) {
	case map[any]any:
		newMap := make(map[string]any, len(value))
		for k, v := range value {
			newMap[fmt.Sprint(k)] = reformatInnerMaps(v)
		}
		return newMap
	case map[string]any:
		for k, v := range value {
			value[k] = reformatInnerMaps(v)
		}
		return value
	case []any:
		for i, v := range value {
			value[i] = reformatInnerMaps(v)
		}
		return value
	default:
		return valueI
	}
}
