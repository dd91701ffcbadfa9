package trials

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ginjaninja78/presentielijst/internal/dates"
	"github.com/ginjaninja78/presentielijst/internal/store"
)

// Store keys for the remembered list settings.
const (
	MonthKey   = "settings:month"
	YearKey    = "settings:year"
	ColumnsKey = "settings:columns"
)

// Preferences are the list settings remembered between runs.
// Zero Month or Year means "not chosen".
type Preferences struct {
	Month   int
	Year    int
	Columns int
}

// LoadPreferences reads the preferences from s. Unusable stored values are
// ignored; a missing or invalid column count becomes the default.
func LoadPreferences(s store.Store) (Preferences, error) {
	prefs := Preferences{Columns: dates.DefaultColumnCount}

	month, err := readInt(s, MonthKey)
	if err != nil {
		return prefs, err
	}
	if month >= 1 && month <= 12 {
		prefs.Month = month
	}

	year, err := readInt(s, YearKey)
	if err != nil {
		return prefs, err
	}
	if year > 0 {
		prefs.Year = year
	}

	columns, err := readInt(s, ColumnsKey)
	if err != nil {
		return prefs, err
	}
	if columns != 0 {
		prefs.Columns = dates.ClampColumnCount(columns)
	}

	return prefs, nil
}

// SavePreferences writes p to s. Unset month or year removes the stored value.
func SavePreferences(s store.Store, p Preferences) error {
	if err := writeOptional(s, MonthKey, p.Month, p.Month >= 1 && p.Month <= 12); err != nil {
		return err
	}
	if err := writeOptional(s, YearKey, p.Year, p.Year > 0); err != nil {
		return err
	}
	return writeOptional(s, ColumnsKey, dates.ClampColumnCount(p.Columns), true)
}

func readInt(s store.Store, key string) (int, error) {
	raw, ok, err := s.Get(key)
	if err != nil {
		return 0, fmt.Errorf("failed to read %s: %w", key, err)
	}
	if !ok {
		return 0, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, nil
	}
	return n, nil
}

func writeOptional(s store.Store, key string, value int, set bool) error {
	var err error
	if set {
		err = s.Set(key, strconv.Itoa(value))
	} else {
		err = s.Remove(key)
	}
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}
