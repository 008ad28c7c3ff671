package sketchpad

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fxamacker/cbor/v2"
)

// secretEnvVar names the environment variable carrying the HMAC secret.
// When unset or empty, sketches are signed with a plain SHA-256 digest
// instead of HMAC-SHA256 — both are checked symmetrically on Load.
const secretEnvVar = "JARVIS_SECRET"

const fileExt = ".jarvis"

// PersistenceErrorKind classifies a persistence failure: an I/O failure,
// a malformed document, or a detected tamper/corruption.
type PersistenceErrorKind int

const (
	KindIO PersistenceErrorKind = iota
	KindParse
	KindTamper
)

func (k PersistenceErrorKind) String() string {
	switch k {
	case KindIO:
		return "io"
	case KindParse:
		return "parse"
	case KindTamper:
		return "tamper"
	default:
		return "unknown"
	}
}

// PersistenceError wraps a lower-level error with its taxonomy kind.
type PersistenceError struct {
	Kind PersistenceErrorKind
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("sketchpad: %s: %v", e.Kind, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

func ioErr(err error) error    { return &PersistenceError{Kind: KindIO, Err: err} }
func parseErr(err error) error { return &PersistenceError{Kind: KindParse, Err: err} }
func tamperErr(err error) error { return &PersistenceError{Kind: KindTamper, Err: err} }

// gridDoc/lineDoc/signablePayload/fileDoc model the on-disk document.
// signablePayload carries no signature field: it is the exact byte-for-byte
// canonical CBOR encoding that both Save and Load sign over — canonical
// binary serialization with the signature field excluded.
type gridDoc struct {
	SpacingPercent     float64 `json:"grid_spacing_percent" cbor:"grid_spacing_percent"`
	RealWorldSpacingCM float64 `json:"real_world_spacing_cm" cbor:"real_world_spacing_cm"`
	SnapToGrid         bool    `json:"snap_to_grid" cbor:"snap_to_grid"`
	ShowMeasurements   bool    `json:"show_measurements" cbor:"show_measurements"`
}

type lineDoc struct {
	X0 float64 `json:"x0" cbor:"x0"`
	Y0 float64 `json:"y0" cbor:"y0"`
	X1 float64 `json:"x1" cbor:"x1"`
	Y1 float64 `json:"y1" cbor:"y1"`
	Color     uint32 `json:"color" cbor:"color"`
	Thickness int    `json:"thickness" cbor:"thickness"`
}

type signablePayload struct {
	Name              string    `cbor:"name"`
	Width             int       `cbor:"width"`
	Height            int       `cbor:"height"`
	CreatedTimestamp  int64     `cbor:"created_timestamp"`
	Grid              gridDoc   `cbor:"grid"`
	Lines             []lineDoc `cbor:"lines"`
}

type fileDoc struct {
	Name             string    `json:"name"`
	Width            int       `json:"width"`
	Height           int       `json:"height"`
	CreatedTimestamp int64     `json:"created_timestamp"`
	Grid             gridDoc   `json:"grid"`
	Lines            []lineDoc `json:"lines"`
	Signature        string    `json:"signature"`
}

func toDocs(s Sketch) (gridDoc, []lineDoc) {
	g := gridDoc{
		SpacingPercent:     s.Grid.SpacingPercent,
		RealWorldSpacingCM: s.Grid.RealWorldSpacingCM,
		SnapToGrid:         s.Grid.SnapToGrid,
		ShowMeasurements:   s.Grid.ShowMeasurements,
	}
	lines := make([]lineDoc, len(s.Lines))
	for i, l := range s.Lines {
		lines[i] = lineDoc{X0: l.Start.X, Y0: l.Start.Y, X1: l.End.X, Y1: l.End.Y, Color: l.Color, Thickness: l.Thickness}
	}
	return g, lines
}

func signature(payload signablePayload) (string, error) {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		return "", err
	}
	data, err := em.Marshal(payload)
	if err != nil {
		return "", err
	}
	secret := os.Getenv(secretEnvVar)
	if secret != "" {
		mac := hmac.New(sha256.New, []byte(secret))
		mac.Write(data)
		return hex.EncodeToString(mac.Sum(nil)), nil
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

func (sp *SketchPad) persistPath() string {
	return resolvePath(sp.cfg.PersistDir, sp.sketch.Name)
}

func resolvePath(dir, name string) string {
	if filepath.Ext(name) != fileExt {
		name += fileExt
	}
	if filepath.IsAbs(name) || filepath.Dir(name) != "." {
		return name
	}
	return filepath.Join(dir, name)
}

// Save writes the current sketch to disk, signed, via atomic
// write-temp-then-rename. Exported for callers that want to force a save
// outside the auto-save-on-finalize path.
func (sp *SketchPad) Save() error {
	sp.mu.Lock()
	defer sp.mu.Unlock()
	return sp.save()
}

// save assumes sp.mu is already held.
func (sp *SketchPad) save() error {
	grid, lines := toDocs(sp.sketch)
	payload := signablePayload{
		Name: sp.sketch.Name, Width: sp.sketch.Width, Height: sp.sketch.Height,
		CreatedTimestamp: sp.sketch.CreatedTimestampMS, Grid: grid, Lines: lines,
	}
	sig, err := signature(payload)
	if err != nil {
		return ioErr(err)
	}
	doc := fileDoc{
		Name: payload.Name, Width: payload.Width, Height: payload.Height,
		CreatedTimestamp: payload.CreatedTimestamp, Grid: grid, Lines: lines,
		Signature: sig,
	}

	path := sp.persistPath()
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return ioErr(err)
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return ioErr(err)
	}

	tmpPath := path + ".tmp"
	f, err := os.OpenFile(tmpPath, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600)
	if err != nil {
		return ioErr(err)
	}

	writeErr := writeAll(f, data)
	var syncErr error
	if writeErr == nil {
		syncErr = f.Sync()
	}
	closeErr := f.Close()

	if writeErr != nil || syncErr != nil || closeErr != nil {
		os.Remove(tmpPath)
		if writeErr != nil {
			return ioErr(writeErr)
		}
		if syncErr != nil {
			return ioErr(syncErr)
		}
		return ioErr(closeErr)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return ioErr(err)
	}
	return nil
}

// writeAll retries on short writes, the Go equivalent of looping a C write()
// call across EINTR/partial-write results.
func writeAll(f *os.File, data []byte) error {
	for len(data) > 0 {
		n, err := f.Write(data)
		if err != nil {
			return err
		}
		data = data[n:]
	}
	return nil
}

// Load reads and verifies a persisted sketch, replacing the SketchPad's
// current state and resetting the drawing state machine on success. A
// missing signature key or a mismatched signature both return a
// PersistenceError with Kind KindTamper.
func (sp *SketchPad) Load() error {
	sp.mu.Lock()
	defer sp.mu.Unlock()

	path := sp.persistPath()
	data, err := os.ReadFile(path)
	if err != nil {
		return ioErr(err)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return parseErr(err)
	}
	sigRaw, present := raw["signature"]
	if !present {
		return tamperErr(fmt.Errorf("missing signature field"))
	}
	var sig string
	if err := json.Unmarshal(sigRaw, &sig); err != nil {
		return parseErr(err)
	}

	var doc fileDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return parseErr(err)
	}

	payload := signablePayload{
		Name: doc.Name, Width: doc.Width, Height: doc.Height,
		CreatedTimestamp: doc.CreatedTimestamp, Grid: doc.Grid, Lines: doc.Lines,
	}
	expected, err := signature(payload)
	if err != nil {
		return ioErr(err)
	}
	if !hmac.Equal([]byte(expected), []byte(sig)) {
		return tamperErr(fmt.Errorf("signature mismatch"))
	}

	lines := make([]Line, len(doc.Lines))
	for i, l := range doc.Lines {
		lines[i] = Line{Start: Point{X: l.X0, Y: l.Y0}, End: Point{X: l.X1, Y: l.Y1}, Color: l.Color, Thickness: l.Thickness}
	}
	sp.sketch = Sketch{
		Name: doc.Name, Width: doc.Width, Height: doc.Height,
		CreatedTimestampMS: doc.CreatedTimestamp,
		Lines:              lines,
		Grid: GridConfig{
			SpacingPercent:     doc.Grid.SpacingPercent,
			RealWorldSpacingCM: doc.Grid.RealWorldSpacingCM,
			SnapToGrid:         doc.Grid.SnapToGrid,
			ShowMeasurements:   doc.Grid.ShowMeasurements,
			Enabled:            sp.sketch.Grid.Enabled,
			Color:              sp.sketch.Grid.Color,
		},
	}
	sp.state = WaitingForStart
	sp.manualStart = false
	sp.resetConfirmation()
	sp.haveSmoothed = false
	sp.history = nil
	return nil
}
