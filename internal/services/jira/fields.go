// -----------------------------------------------------------------------
// Field catalog - maps human-readable custom field names to customfield ids
// -----------------------------------------------------------------------

package jira

import (
	"context"
	"strings"
	"sync"

	"github.com/ternarybob/arbor"
)

// seedFields are the well-known custom field mappings the catalog starts
// from. Remote discovery overlays these, so an instance whose ids differ
// wins over the seeds once Initialize succeeds.
var seedFields = map[string]string{
	"Epic Name":           "customfield_10021",
	"Epic Link":           "customfield_10019",
	"Acceptance Criteria": "customfield_11738",
	"Story Points":        "customfield_10026",
}

// FieldCatalog resolves custom field display names to canonical field ids.
// The catalog is a read-mostly snapshot: lookups take a read lock, refreshes
// build a replacement map and swap it wholesale.
type FieldCatalog struct {
	client *Client
	logger arbor.ILogger

	mu     sync.RWMutex
	byName map[string]string
	names  []string
}

// NewFieldCatalog creates a catalog pre-populated with the seed mappings
func NewFieldCatalog(client *Client, logger arbor.ILogger) *FieldCatalog {
	catalog := &FieldCatalog{
		client: client,
		logger: logger,
	}
	catalog.install(nil)
	return catalog
}

// Initialize discovers the instance's custom fields and overlays them on the
// seeds. Discovery failure is not fatal: the catalog stays on seeds and a
// degraded-mode warning is logged.
func (fc *FieldCatalog) Initialize(ctx context.Context) error {
	fields, err := fc.client.ListFields(ctx)
	if err != nil {
		fc.logger.Warn().Err(err).Msg("Custom field discovery failed, running on seed mappings only")
		return err
	}

	fc.install(fields)
	fc.logger.Info().Int("fields", len(fields)).Msg("Custom field catalog initialized")
	return nil
}

// Refresh re-runs discovery. Used by the optional scheduled refresh.
func (fc *FieldCatalog) Refresh(ctx context.Context) {
	fields, err := fc.client.ListFields(ctx)
	if err != nil {
		fc.logger.Warn().Err(err).Msg("Custom field refresh failed, keeping current catalog")
		return
	}
	fc.install(fields)
}

func (fc *FieldCatalog) install(discovered []Field) {
	byName := make(map[string]string, len(seedFields)+len(discovered))
	for name, id := range seedFields {
		byName[name] = id
	}
	for _, field := range discovered {
		if field.Custom && field.Name != "" {
			byName[field.Name] = field.ID
		}
	}

	names := make([]string, 0, len(byName))
	for name := range byName {
		names = append(names, name)
	}

	fc.mu.Lock()
	fc.byName = byName
	fc.names = names
	fc.mu.Unlock()
}

// Resolve maps a custom field name to its canonical customfield id. Names
// already in canonical form pass through unconditionally. Unknown names
// resolve to ok=false with a warning; Resolve never fails.
func (fc *FieldCatalog) Resolve(nameOrID string) (string, bool) {
	if strings.HasPrefix(nameOrID, "customfield_") {
		return nameOrID, true
	}

	fc.mu.RLock()
	id, ok := fc.byName[nameOrID]
	fc.mu.RUnlock()

	if !ok {
		fc.logger.Warn().Str("field", nameOrID).Msg("Unknown custom field name, dropping")
		return "", false
	}
	return id, true
}

// lookup is Resolve without the unknown-name warning, for callers that have
// their own fallback.
func (fc *FieldCatalog) lookup(name string) (string, bool) {
	fc.mu.RLock()
	id, ok := fc.byName[name]
	fc.mu.RUnlock()
	return id, ok
}

// DisplayFields extracts the custom values the catalog knows a display name
// for, keyed by that name. Unknown customfield ids are omitted.
func (fc *FieldCatalog) DisplayFields(custom map[string]any) map[string]any {
	fc.mu.RLock()
	defer fc.mu.RUnlock()

	named := make(map[string]any)
	for name, id := range fc.byName {
		if value, ok := custom[id]; ok {
			named[name] = value
		}
	}
	return named
}

// KnownFields returns a copy of the display names the catalog can resolve
func (fc *FieldCatalog) KnownFields() []string {
	fc.mu.RLock()
	defer fc.mu.RUnlock()

	names := make([]string, len(fc.names))
	copy(names, fc.names)
	return names
}
