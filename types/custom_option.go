package types

// DictionaryItem is a single FFmpeg option (for example "probesize").
type DictionaryItem struct {
	Key   string `yaml:"key"`
	Value string `yaml:"value"`
}

type DictionaryItems []DictionaryItem

// DictionaryItemsFromStrings parses "key=value" pairs; items without
// a "=" get an empty value.
func DictionaryItemsFromStrings(in []string) DictionaryItems {
	result := make(DictionaryItems, 0, len(in))
	for _, s := range in {
		item := DictionaryItem{Key: s}
		for idx := 0; idx < len(s); idx++ {
			if s[idx] == '=' {
				item.Key, item.Value = s[:idx], s[idx+1:]
				break
			}
		}
		result = append(result, item)
	}
	return result
}

// Deduplicate keeps only the last occurrence of every key, preserving
// the order of those last occurrences.
func (s DictionaryItems) Deduplicate() DictionaryItems {
	lastIdx := make(map[string]int, len(s))
	for idx, item := range s {
		lastIdx[item.Key] = idx
	}
	result := make(DictionaryItems, 0, len(lastIdx))
	for idx, item := range s {
		if lastIdx[item.Key] != idx {
			continue
		}
		result = append(result, item)
	}
	return result
}
