// Package backup serializes the full dataset to a self-describing JSON
// document, optionally encrypts it with a password-derived key, and
// restores it atomically. The wire format is compatible with backups
// produced by earlier releases.
package backup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/finanza/finanza/internal/model"
	"github.com/finanza/finanza/internal/service"
)

// Document identity. Restore refuses documents carrying a different app
// tag or a schema version this release does not understand.
const (
	// AppID tags every backup document.
	AppID = "Finanza"
	// SchemaVersion is bumped on backward-incompatible entity changes.
	SchemaVersion = 1
)

// Codec error taxonomy. The caller owns user-facing messaging and retry
// prompts.
var (
	// ErrPasswordRequired means the input is encrypted and no password
	// was supplied; the caller can prompt and retry with the same bytes.
	ErrPasswordRequired = errors.New("backup is encrypted: password required")
	// ErrDecryptionFailed means wrong password or corrupted ciphertext,
	// deliberately undifferentiated.
	ErrDecryptionFailed = errors.New("decryption failed: wrong password or corrupted backup")
	// ErrBackupFormatInvalid means the document is not a backup this
	// application understands. Surfaced before any destructive write.
	ErrBackupFormatInvalid = errors.New("invalid backup format")
)

// Meta identifies a backup document.
type Meta struct {
	Timestamp time.Time `json:"timestamp"`
	App       string    `json:"app"`
	Version   int       `json:"version"`
}

// Payload holds the five entity collections.
type Payload struct {
	Accounts     []model.Account     `json:"accounts"`
	Transactions []model.Transaction `json:"transactions"`
	Categories   []model.Category    `json:"categories"`
	Budgets      []model.Budget      `json:"budgets"`
	Goals        []model.Goal        `json:"goals"`
}

// Document is the plaintext backup wire format.
type Document struct {
	Data Payload `json:"data"`
	Meta Meta    `json:"meta"`
}

// Codec performs export and restore against an injected store. A single
// mutex serializes operations: two concurrent restores must never race
// on the five-table clear and bulk insert.
type Codec struct {
	store   service.Storage
	cryptor *Cryptor
	now     func() time.Time
	mu      sync.Mutex
}

// NewCodec creates a codec bound to a store.
func NewCodec(store service.Storage, cryptor *Cryptor) *Codec {
	return &Codec{
		store:   store,
		cryptor: cryptor,
		now:     time.Now,
	}
}

// Filename returns the conventional backup file name for a moment in
// time. The extension is a hint only; restore always sniffs content.
func Filename(now time.Time, encrypted bool) string {
	name := fmt.Sprintf("finanza_backup_%s.json", now.Format("2006-01-02_15-04"))
	if encrypted {
		name = name[:len(name)-len(".json")] + ".enc.json"
	}
	return name
}

// Export serializes the full store contents. With a non-empty password
// the document is sealed into an encrypted envelope; otherwise the
// plaintext JSON document is returned.
func (c *Codec) Export(ctx context.Context, password string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	snapshot, err := c.store.Export(ctx)
	if err != nil {
		return nil, err
	}

	document := Document{
		Meta: Meta{
			Version:   SchemaVersion,
			App:       AppID,
			Timestamp: c.now().UTC(),
		},
		Data: Payload{
			Accounts:     emptyNotNil(snapshot.Accounts),
			Transactions: emptyNotNil(snapshot.Transactions),
			Categories:   emptyNotNil(snapshot.Categories),
			Budgets:      emptyNotNil(snapshot.Budgets),
			Goals:        emptyNotNil(snapshot.Goals),
		},
	}

	plaintext, err := json.MarshalIndent(document, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to serialize backup: %w", err)
	}

	if password == "" {
		slog.Info("exported backup", "encrypted", false, "transactions", len(document.Data.Transactions))
		return plaintext, nil
	}

	envelope, err := c.cryptor.Encrypt(ctx, plaintext, password)
	if err != nil {
		return nil, err
	}
	sealed, err := json.MarshalIndent(envelope, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to serialize envelope: %w", err)
	}

	slog.Info("exported backup", "encrypted", true, "transactions", len(document.Data.Transactions))
	return sealed, nil
}

// Restore parses raw backup bytes, decrypting if needed, validates the
// document, and atomically replaces the store contents. Nothing is
// written until the entire payload has parsed and validated; the
// replacement itself runs in one storage transaction, so a failure
// leaves the previous state intact.
func (c *Codec) Restore(ctx context.Context, raw []byte, password string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	document, err := c.decode(ctx, raw, password)
	if err != nil {
		return err
	}
	if err := validateDocument(document); err != nil {
		return err
	}

	snapshot := service.Snapshot{
		Accounts:     document.Data.Accounts,
		Transactions: document.Data.Transactions,
		Categories:   document.Data.Categories,
		Budgets:      document.Data.Budgets,
		Goals:        document.Data.Goals,
	}
	if err := c.store.ReplaceAll(ctx, &snapshot); err != nil {
		return err
	}

	slog.Info("restored backup",
		"accounts", len(snapshot.Accounts),
		"transactions", len(snapshot.Transactions))
	return nil
}

// decode sniffs the envelope shape and returns the plaintext document.
func (c *Codec) decode(ctx context.Context, raw []byte, password string) (*Document, error) {
	var envelope Envelope
	if err := json.Unmarshal(raw, &envelope); err == nil && envelope.Encryption != "" && envelope.Data != "" {
		if password == "" {
			return nil, ErrPasswordRequired
		}
		plaintext, err := c.cryptor.Decrypt(ctx, &envelope, password)
		if err != nil {
			return nil, err
		}
		raw = plaintext
	}

	var document Document
	if err := json.Unmarshal(raw, &document); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBackupFormatInvalid, err)
	}
	return &document, nil
}

// validateDocument checks identity tags and every entity before any
// destructive write is issued.
func validateDocument(document *Document) error {
	if document.Meta.App != AppID {
		return fmt.Errorf("%w: unexpected app tag %q", ErrBackupFormatInvalid, document.Meta.App)
	}
	if document.Meta.Version < 1 || document.Meta.Version > SchemaVersion {
		return fmt.Errorf("%w: unsupported schema version %d", ErrBackupFormatInvalid, document.Meta.Version)
	}

	for i := range document.Data.Accounts {
		if err := document.Data.Accounts[i].Validate(); err != nil {
			return fmt.Errorf("%w: account %d: %v", ErrBackupFormatInvalid, i, err)
		}
	}
	for i := range document.Data.Transactions {
		if err := document.Data.Transactions[i].Validate(); err != nil {
			return fmt.Errorf("%w: transaction %d: %v", ErrBackupFormatInvalid, i, err)
		}
	}
	for i := range document.Data.Categories {
		if err := document.Data.Categories[i].Validate(); err != nil {
			return fmt.Errorf("%w: category %d: %v", ErrBackupFormatInvalid, i, err)
		}
	}
	for i := range document.Data.Budgets {
		if err := document.Data.Budgets[i].Validate(); err != nil {
			return fmt.Errorf("%w: budget %d: %v", ErrBackupFormatInvalid, i, err)
		}
	}
	for i := range document.Data.Goals {
		if err := document.Data.Goals[i].Validate(); err != nil {
			return fmt.Errorf("%w: goal %d: %v", ErrBackupFormatInvalid, i, err)
		}
	}
	return nil
}

// emptyNotNil keeps empty collections as [] in the JSON output, matching
// documents produced by earlier releases.
func emptyNotNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
