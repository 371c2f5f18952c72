package ledger

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mrz1836/sigil/internal/constants"
	"github.com/mrz1836/sigil/internal/domain"
	sigilerrors "github.com/mrz1836/sigil/internal/errors"
)

// Exporter packages single certificates for third-party verification.
type Exporter struct {
	store Store
}

// NewExporter creates an Exporter over the given store.
func NewExporter(store Store) *Exporter {
	return &Exporter{store: store}
}

// Export builds a self-contained verification bundle for the certificate
// with the given id. The hash chain proof starts at the genesis sentinel
// and runs through the exported certificate's own hash, so a verifier can
// replay every link without access to the ledger. The bundle carries only
// hashes and the signer public key, no execution plaintext.
func (e *Exporter) Export(ctx context.Context, id string) (*domain.ExportBundle, error) {
	certs, err := e.store.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading ledger: %w", err)
	}

	idx := -1
	for i := range certs {
		if certs[i].ID == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		return nil, fmt.Errorf("%w: %s", sigilerrors.ErrCertificateNotFound, id)
	}

	proof := make([]string, 0, idx+2)
	proof = append(proof, constants.GenesisHash)
	for i := 0; i <= idx; i++ {
		proof = append(proof, certs[i].CertificateHash)
	}

	return &domain.ExportBundle{
		Certificate:        certs[idx].Clone(),
		SignerPublicKeyHex: certs[idx].SignerPublicKey,
		HashChainProof:     proof,
	}, nil
}

// ExportJSON renders the bundle for the given id as indented JSON, the
// format written by the export command and consumed by external verifiers.
func (e *Exporter) ExportJSON(ctx context.Context, id string) ([]byte, error) {
	bundle, err := e.Export(ctx, id)
	if err != nil {
		return nil, err
	}

	data, err := json.MarshalIndent(bundle, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding export bundle: %w", err)
	}

	return data, nil
}
