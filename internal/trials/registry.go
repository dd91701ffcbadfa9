// =============================================================================
// Presentielijst - Trial Participant Registry
// =============================================================================
//
// People who join a lesson for a trial are not in the member export. They are
// registered by hand and printed as extra rows below the members.
//
// STORAGE LAYOUT:
//   One store key per lesson, "trials:<coursecode>", holding a JSON array of
//   trials. An empty coursecode is stored under "trials:onbekend".
//
// Stored data is read leniently: entries without id, coursecode or name are
// skipped and an unreadable value counts as an empty list.
//
// =============================================================================

package trials

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/ginjaninja78/presentielijst/internal/store"
	"github.com/ginjaninja78/presentielijst/internal/types"
)

const (
	// KeyPrefix starts every trial key in the store.
	KeyPrefix = "trials:"

	unknownCoursecode = "onbekend"
)

var (
	ErrNotFound     = errors.New("trial not found")
	ErrInvalidTrial = errors.New("invalid trial")
)

// Key returns the store key for coursecode.
func Key(coursecode string) string {
	code := strings.TrimSpace(coursecode)
	if code == "" {
		code = unknownCoursecode
	}
	return KeyPrefix + code
}

// New builds a trial with a fresh id.
//
// PARAMETERS:
//   - coursecode, name: Required, trimmed.
//   - phone: Optional, trimmed.
//   - count: Number of trial lessons attended; negative becomes zero.
//   - now: Creation time.
func New(coursecode, name, phone string, count int, now time.Time) (types.Trial, error) {
	trial := types.Trial{
		ID:         uuid.NewString(),
		Coursecode: strings.TrimSpace(coursecode),
		Name:       strings.TrimSpace(name),
		Phone:      strings.TrimSpace(phone),
		Count:      max(count, 0),
		CreatedAt:  now.UTC(),
		UpdatedAt:  now.UTC(),
	}
	if err := validate(trial); err != nil {
		return types.Trial{}, err
	}
	return trial, nil
}

func validate(trial types.Trial) error {
	switch {
	case strings.TrimSpace(trial.ID) == "":
		return fmt.Errorf("%w: missing id", ErrInvalidTrial)
	case strings.TrimSpace(trial.Coursecode) == "":
		return fmt.Errorf("%w: missing coursecode", ErrInvalidTrial)
	case strings.TrimSpace(trial.Name) == "":
		return fmt.Errorf("%w: missing name", ErrInvalidTrial)
	}
	return nil
}

// =============================================================================
// REGISTRY
// =============================================================================

// Registry reads and writes trials in a store.
type Registry struct {
	store  store.Store
	logger *log.Entry
	now    func() time.Time
}

// NewRegistry returns a registry over s. A nil logger uses the standard logger.
func NewRegistry(s store.Store, logger *log.Entry) *Registry {
	if logger == nil {
		logger = log.NewEntry(log.StandardLogger())
	}
	return &Registry{
		store:  s,
		logger: logger.WithField("component", "trials"),
		now:    time.Now,
	}
}

// ForLesson returns the trials registered for coursecode, in stored order.
func (r *Registry) ForLesson(coursecode string) ([]types.Trial, error) {
	return r.load(Key(coursecode))
}

// All returns every trial, ordered by store key.
func (r *Registry) All() ([]types.Trial, error) {
	keys, err := r.store.ListKeys(KeyPrefix)
	if err != nil {
		return nil, fmt.Errorf("failed to list trials: %w", err)
	}

	var all []types.Trial
	for _, key := range keys {
		trials, err := r.load(key)
		if err != nil {
			return nil, err
		}
		all = append(all, trials...)
	}
	return all, nil
}

// Find returns the trial with id.
func (r *Registry) Find(id string) (types.Trial, error) {
	_, trials, index, err := r.locate(id)
	if err != nil {
		return types.Trial{}, err
	}
	if index < 0 {
		return types.Trial{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return trials[index], nil
}

// Add appends trial to its lesson and returns the lesson's trials.
func (r *Registry) Add(trial types.Trial) ([]types.Trial, error) {
	if err := validate(trial); err != nil {
		return nil, err
	}

	key := Key(trial.Coursecode)
	existing, err := r.load(key)
	if err != nil {
		return nil, err
	}
	next := append(existing, trial)
	if err := r.save(key, next); err != nil {
		return nil, err
	}

	r.logger.WithFields(log.Fields{"id": trial.ID, "coursecode": trial.Coursecode}).Debug("trial added")
	return next, nil
}

// Update replaces the stored trial with the same id. When the coursecode
// changed the trial moves to the end of its new lesson. Returns the trials of
// the lesson the trial ends up in.
func (r *Registry) Update(trial types.Trial) ([]types.Trial, error) {
	if err := validate(trial); err != nil {
		return nil, err
	}

	sourceKey, sourceTrials, index, err := r.locate(trial.ID)
	if err != nil {
		return nil, err
	}
	if index < 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, trial.ID)
	}

	trial.UpdatedAt = r.now().UTC()
	targetKey := Key(trial.Coursecode)

	if sourceKey == targetKey {
		next := append([]types.Trial(nil), sourceTrials...)
		next[index] = trial
		if err := r.save(sourceKey, next); err != nil {
			return nil, err
		}
		return next, nil
	}

	remaining := append(append([]types.Trial(nil), sourceTrials[:index]...), sourceTrials[index+1:]...)
	if err := r.save(sourceKey, remaining); err != nil {
		return nil, err
	}

	target, err := r.load(targetKey)
	if err != nil {
		return nil, err
	}
	next := make([]types.Trial, 0, len(target)+1)
	for _, existing := range target {
		if existing.ID != trial.ID {
			next = append(next, existing)
		}
	}
	next = append(next, trial)
	if err := r.save(targetKey, next); err != nil {
		return nil, err
	}

	r.logger.WithFields(log.Fields{"id": trial.ID, "from": sourceKey, "to": targetKey}).Debug("trial moved")
	return next, nil
}

// Remove deletes the trial with id and returns the remaining trials of its
// lesson.
func (r *Registry) Remove(id string) ([]types.Trial, error) {
	key, trials, index, err := r.locate(id)
	if err != nil {
		return nil, err
	}
	if index < 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	next := append(append([]types.Trial(nil), trials[:index]...), trials[index+1:]...)
	if err := r.save(key, next); err != nil {
		return nil, err
	}
	return next, nil
}

// Lookup adapts the registry to a types.TrialLookup for the export layer.
// Read errors are logged and yield no trials.
func (r *Registry) Lookup() types.TrialLookup {
	return func(coursecode string) []types.Trial {
		trials, err := r.ForLesson(coursecode)
		if err != nil {
			r.logger.WithError(err).WithField("coursecode", coursecode).Warn("could not read trials")
			return nil
		}
		return trials
	}
}

// locate finds the key, list and index holding id. Index is -1 when absent.
func (r *Registry) locate(id string) (string, []types.Trial, int, error) {
	keys, err := r.store.ListKeys(KeyPrefix)
	if err != nil {
		return "", nil, -1, fmt.Errorf("failed to list trials: %w", err)
	}
	for _, key := range keys {
		trials, err := r.load(key)
		if err != nil {
			return "", nil, -1, err
		}
		for i, trial := range trials {
			if trial.ID == id {
				return key, trials, i, nil
			}
		}
	}
	return "", nil, -1, nil
}

// =============================================================================
// ENCODING
// =============================================================================

func (r *Registry) load(key string) ([]types.Trial, error) {
	raw, ok, err := r.store.Get(key)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}
	if !ok || raw == "" {
		return []types.Trial{}, nil
	}

	trials, err := decodeTrials(raw, r.now)
	if err != nil {
		r.logger.WithError(err).WithField("key", key).Warn("could not parse stored trials")
		return []types.Trial{}, nil
	}
	return trials, nil
}

func (r *Registry) save(key string, trials []types.Trial) error {
	payload, err := json.Marshal(trials)
	if err != nil {
		return fmt.Errorf("failed to encode trials: %w", err)
	}
	if err := r.store.Set(key, string(payload)); err != nil {
		return fmt.Errorf("failed to store %s: %w", key, err)
	}
	return nil
}

// storedTrial mirrors the stored JSON with loose field types.
type storedTrial struct {
	ID         any `json:"id"`
	Coursecode any `json:"coursecode"`
	Name       any `json:"name"`
	Phone      any `json:"phone"`
	Count      any `json:"count"`
	CreatedAt  any `json:"createdAt"`
	UpdatedAt  any `json:"updatedAt"`
}

// decodeTrials parses a stored JSON array, dropping unusable entries.
func decodeTrials(raw string, now func() time.Time) ([]types.Trial, error) {
	var entries []json.RawMessage
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		return nil, err
	}

	trials := make([]types.Trial, 0, len(entries))
	for _, entry := range entries {
		var stored storedTrial
		if err := json.Unmarshal(entry, &stored); err != nil {
			continue
		}

		trial := types.Trial{
			ID:         trimmedString(stored.ID),
			Coursecode: trimmedString(stored.Coursecode),
			Name:       trimmedString(stored.Name),
			Phone:      trimmedString(stored.Phone),
			Count:      looseCount(stored.Count),
		}
		if trial.ID == "" || trial.Coursecode == "" || trial.Name == "" {
			continue
		}

		created, ok := looseTime(stored.CreatedAt)
		if !ok {
			created = now().UTC()
		}
		updated, ok := looseTime(stored.UpdatedAt)
		if !ok {
			updated = created
		}
		trial.CreatedAt = created
		trial.UpdatedAt = updated

		trials = append(trials, trial)
	}
	return trials, nil
}

func trimmedString(value any) string {
	s, ok := value.(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(s)
}

// looseCount accepts numbers and numeric strings, truncates and clamps at zero.
func looseCount(value any) int {
	var f float64
	switch v := value.(type) {
	case float64:
		f = v
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0
		}
		f = float64(n)
	default:
		return 0
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return 0
	}
	if f > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(math.Trunc(f))
}

func looseTime(value any) (time.Time, bool) {
	s, ok := value.(string)
	if !ok {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
