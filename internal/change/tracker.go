package change

import (
	"context"
	"encoding/hex"
	"fmt"
	"strings"
	"sync"

	"github.com/inful/mdfp"
	"github.com/zeebo/blake3"
	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/webtree/internal/state"
	"git.home.luguber.info/inful/webtree/internal/tree"
)

// PageFingerprint fingerprints a page from its merged meta values and raw
// source.
func PageFingerprint(meta map[string]any, source []byte) (string, error) {
	header := ""
	if len(meta) > 0 {
		out, err := yaml.Marshal(meta)
		if err != nil {
			return "", fmt.Errorf("serialize meta: %w", err)
		}
		header = string(out)
	}
	return mdfp.CalculateFingerprintFromParts(header, string(source)), nil
}

// StaticFingerprint fingerprints a file copied verbatim.
func StaticFingerprint(data []byte) string {
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// SourceTracker compares node fingerprints against the ones recorded by the
// previous build. Nodes are keyed by full path. A record holds the node's
// fingerprint and, after the first line break, the signature of the template
// chain it was committed with.
type SourceTracker struct {
	store  state.FingerprintStore
	chains TemplateResolver

	mu       sync.Mutex
	previous map[string]string
	pending  map[string]string
	forget   map[string]struct{}
}

// NewSourceTracker returns a tracker backed by store. Commit records the
// template chain resolved by chains; nil records none. Load must be called
// before Changed reports anything but "changed".
func NewSourceTracker(store state.FingerprintStore, chains TemplateResolver) *SourceTracker {
	return &SourceTracker{
		store:    store,
		chains:   chains,
		previous: map[string]string{},
		pending:  map[string]string{},
		forget:   map[string]struct{}{},
	}
}

// Load reads the fingerprints of the previous build.
func (t *SourceTracker) Load(ctx context.Context) error {
	prev, err := t.store.LoadFingerprints(ctx)
	if err != nil {
		return err
	}
	t.mu.Lock()
	t.previous = prev
	t.mu.Unlock()
	return nil
}

// Changed reports whether n has no fingerprint, was never recorded or was
// recorded with a different fingerprint.
func (t *SourceTracker) Changed(n *tree.Node) bool {
	fp := n.Info.Fingerprint
	if fp == "" {
		return true
	}
	prev, ok := t.recorded(n)
	if !ok {
		return true
	}
	recFP, _ := splitRecord(prev)
	return recFP != fp
}

// ChainChanged reports whether n was never recorded or was recorded with a
// template chain whose signature differs from signature.
func (t *SourceTracker) ChainChanged(n *tree.Node, signature string) bool {
	prev, ok := t.recorded(n)
	if !ok {
		return true
	}
	_, recChain := splitRecord(prev)
	return recChain != signature
}

func (t *SourceTracker) recorded(n *tree.Node) (string, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	prev, ok := t.previous[n.FullPath()]
	return prev, ok
}

// Commit marks n's current fingerprint and template chain for recording.
func (t *SourceTracker) Commit(n *tree.Node) {
	if n.Info.Fingerprint == "" {
		return
	}
	rec := n.Info.Fingerprint
	if t.chains != nil {
		if sig := ChainSignature(t.chains.Templates(n)); sig != "" {
			rec += "\n" + sig
		}
	}
	key := n.FullPath()
	t.mu.Lock()
	defer t.mu.Unlock()
	t.pending[key] = rec
	delete(t.forget, key)
}

func splitRecord(rec string) (fingerprint, chain string) {
	fingerprint, chain, _ = strings.Cut(rec, "\n")
	return fingerprint, chain
}

// Forget drops n's recorded fingerprint so the next build treats it as changed.
func (t *SourceTracker) Forget(n *tree.Node) {
	key := n.FullPath()
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.pending, key)
	t.forget[key] = struct{}{}
}

// Flush writes committed and forgotten entries to the store. The in-memory
// view is updated as well, so Changed reflects the flushed state.
func (t *SourceTracker) Flush(ctx context.Context) error {
	t.mu.Lock()
	set := t.pending
	remove := make([]string, 0, len(t.forget))
	for k := range t.forget {
		remove = append(remove, k)
	}
	t.pending = map[string]string{}
	t.forget = map[string]struct{}{}
	t.mu.Unlock()

	if len(set) == 0 && len(remove) == 0 {
		return nil
	}
	if err := t.store.SaveFingerprints(ctx, set, remove); err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	for k, v := range set {
		t.previous[k] = v
	}
	for _, k := range remove {
		delete(t.previous, k)
	}
	return nil
}
