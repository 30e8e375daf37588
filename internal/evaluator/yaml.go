package evaluator

import (
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/nilp0inter/grace/internal/typesystem"
)

// DecodeYAML lifts a YAML document into a value and its type. Mappings
// become records, sequences become lists, scalars become Natural, Bool or
// Text. A heterogeneous sequence gets the element type `exists a . a`,
// which is also how such a list would have to be annotated in source.
func DecodeYAML(content []byte) (Object, typesystem.Type, error) {
	var data interface{}
	if err := yaml.Unmarshal(content, &data); err != nil {
		return nil, nil, fmt.Errorf("yaml parse error: %v", err)
	}
	return liftYaml(data)
}

func liftYaml(data interface{}) (Object, typesystem.Type, error) {
	switch v := data.(type) {
	case bool:
		return &Boolean{Value: v}, typesystem.BoolType, nil
	case int:
		if v < 0 {
			return nil, nil, fmt.Errorf("negative number %d has no Natural representation", v)
		}
		return &Natural{Value: uint64(v)}, typesystem.NaturalType, nil
	case uint64:
		return &Natural{Value: v}, typesystem.NaturalType, nil
	case string:
		return &Text{Value: v}, typesystem.TextType, nil
	case []interface{}:
		elements := make([]Object, 0, len(v))
		var elementType typesystem.Type
		uniform := true
		for _, item := range v {
			value, itemType, err := liftYaml(item)
			if err != nil {
				return nil, nil, err
			}
			elements = append(elements, value)
			if elementType == nil {
				elementType = itemType
			} else if elementType.String() != itemType.String() {
				uniform = false
			}
		}
		if elementType == nil || !uniform {
			elementType = typesystem.Exists{
				Name:   "a",
				Domain: typesystem.DomainType,
				Body:   typesystem.TVar{Name: "a"},
			}
		}
		return &List{Elements: elements}, typesystem.TList{Element: elementType}, nil
	case map[string]interface{}:
		// yaml.v3 preserves no order on plain maps; sort for stable output.
		entries := make([]RecordEntry, 0, len(v))
		fields := make([]typesystem.Field, 0, len(v))
		for _, label := range sortedKeys(v) {
			value, fieldType, err := liftYaml(v[label])
			if err != nil {
				return nil, nil, err
			}
			entries = append(entries, RecordEntry{Label: label, Value: value})
			fields = append(fields, typesystem.Field{Label: label, Type: fieldType})
		}
		return &Record{Entries: entries}, typesystem.TRecord{Fields: fields, Tail: typesystem.EmptyRow{}}, nil
	case nil:
		return nil, nil, fmt.Errorf("null has no representation")
	}
	return nil, nil, fmt.Errorf("unsupported yaml value %T", data)
}

func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
