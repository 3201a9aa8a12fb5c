package icons

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"weather-panel/internal/model"
)

// mappingTable maps a condition code to the icon filename for each
// time-of-day tag. Loaded once at startup and read-only afterwards.
type mappingTable map[int]map[model.TimeOfDay]string

// loadMappings reads the line-oriented mapping resource. Each line is
// "conditionCode,timeOfDayTag,filename"; duplicate (code, tag) pairs keep
// the last occurrence.
func loadMappings(path string) (mappingTable, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening mapping file: %w", err)
	}
	defer file.Close()

	mappings := mappingTable{}
	scanner := bufio.NewScanner(file)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		pieces := strings.Split(text, ",")
		if len(pieces) != 3 {
			return nil, fmt.Errorf("mapping file %s line %d: expected 3 fields, got %d", path, line, len(pieces))
		}
		code, err := strconv.Atoi(strings.TrimSpace(pieces[0]))
		if err != nil {
			return nil, fmt.Errorf("mapping file %s line %d: bad condition code: %w", path, line, err)
		}
		tag := model.TimeOfDay(strings.TrimSpace(pieces[1]))
		filename := strings.TrimSpace(pieces[2])
		if _, ok := mappings[code]; !ok {
			mappings[code] = map[model.TimeOfDay]string{}
		}
		mappings[code][tag] = filename
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading mapping file: %w", err)
	}
	if len(mappings) == 0 {
		return nil, fmt.Errorf("mapping file %s contains no entries", path)
	}
	return mappings, nil
}

// lookup resolves a (code, tag) pair to a filename, falling back to the
// general tag when the specific one is absent.
func (m mappingTable) lookup(conditionID int, conditionTime model.TimeOfDay) (string, bool) {
	conditionMap, ok := m[conditionID]
	if !ok {
		return "", false
	}
	if filename, ok := conditionMap[conditionTime]; ok {
		return filename, true
	}
	if filename, ok := conditionMap[model.General]; ok {
		return filename, true
	}
	return "", false
}
