package vault

import (
	"encoding/json"

	"casevault/internal/domain/entity"
	domainerrors "casevault/internal/domain/errors"
	"casevault/internal/domain/service"
	"casevault/internal/errors"
	vaultcrypto "casevault/internal/infra/crypto"
)

// detectLegacyFormat recognizes the pre-flat document layouts and rejects
// them with a distinct error so the UI can offer migration instead of
// reporting corruption. Legacy shapes seen in the wild:
//   - a bare top-level array of merged case records;
//   - an object without a version that still carries people/cases;
//   - case records embedding the person object instead of a foreign key.
func detectLegacyFormat(raw []byte) bool {
	trimmed := firstNonSpace(raw)
	if trimmed == '[' {
		return true
	}
	if trimmed != '{' {
		return false
	}

	var probe struct {
		Version *int              `json:"version"`
		Cases   []json.RawMessage `json:"cases"`
		People  []json.RawMessage `json:"people"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return false
	}
	if probe.Version == nil && (len(probe.Cases) > 0 || len(probe.People) > 0) {
		return true
	}
	for _, rawCase := range probe.Cases {
		var caseProbe struct {
			Person json.RawMessage `json:"person"`
		}
		if err := json.Unmarshal(rawCase, &caseProbe); err != nil {
			continue
		}
		if len(caseProbe.Person) > 0 && firstNonSpace(caseProbe.Person) == '{' {
			return true
		}
	}

	return false
}

func firstNonSpace(raw []byte) byte {
	for _, b := range raw {
		switch b {
		case ' ', '\t', '\n', '\r':
			continue
		default:
			return b
		}
	}

	return 0
}

// decodeDocument turns raw file content into a document. When the file is
// an encrypted envelope, the key is derived from secret and the envelope
// salt; the derived key and salt are returned for reuse by later saves.
func decodeDocument(raw []byte, codec service.EnvelopeCodec, secret string) (*entity.Document, service.Key, []byte, error) {
	if len(raw) == 0 {
		return nil, nil, nil, domainerrors.ErrMalformedEnvelope.WithDetails("empty file")
	}
	if detectLegacyFormat(raw) {
		return nil, nil, nil, domainerrors.ErrLegacyFormat
	}

	plaintext := raw
	var key service.Key
	var salt []byte

	if codec.IsEnvelope(raw) {
		var env service.Envelope
		if err := json.Unmarshal(raw, &env); err != nil {
			return nil, nil, nil, domainerrors.ErrMalformedEnvelope.WrapMessage("envelope parse failed")
		}
		decodedSalt, err := vaultcrypto.DecodeSalt(&env)
		if err != nil {
			return nil, nil, nil, err
		}
		derived := codec.DeriveKey(secret, decodedSalt)
		opened, err := codec.Open(&env, derived)
		if err != nil {
			return nil, nil, nil, err
		}
		plaintext = opened
		key = derived
		salt = decodedSalt
	}

	if detectLegacyFormat(plaintext) {
		return nil, nil, nil, domainerrors.ErrLegacyFormat
	}
	if err := validateDocumentBytes(plaintext); err != nil {
		return nil, nil, nil, err
	}

	var doc entity.Document
	if err := json.Unmarshal(plaintext, &doc); err != nil {
		return nil, nil, nil, domainerrors.ErrInvalidDocument.WithDetails(err.Error())
	}
	if err := checkForeignKeys(&doc); err != nil {
		return nil, nil, nil, err
	}

	return &doc, key, salt, nil
}

// encodeDocument serializes the document, sealing it in an envelope when a
// key is present. Nil collections are normalized to empty slices first so
// the written file always satisfies the schema's array requirements.
func encodeDocument(doc *entity.Document, codec service.EnvelopeCodec, key service.Key, salt []byte) ([]byte, error) {
	out := *doc
	if out.Cases == nil {
		out.Cases = []entity.Case{}
	}
	if out.People == nil {
		out.People = []entity.Person{}
	}
	if out.Financials == nil {
		out.Financials = []entity.FinancialItem{}
	}
	if out.Notes == nil {
		out.Notes = []entity.Note{}
	}
	if out.Alerts == nil {
		out.Alerts = []entity.Alert{}
	}
	if out.ActivityLog == nil {
		out.ActivityLog = []entity.ActivityEntry{}
	}

	plaintext, err := json.Marshal(&out)
	if err != nil {
		return nil, errors.Wrap(err, "marshal document")
	}
	if len(key) == 0 {
		return plaintext, nil
	}

	env, err := codec.Seal(plaintext, key, salt)
	if err != nil {
		return nil, err
	}
	payload, err := json.Marshal(env)
	if err != nil {
		return nil, errors.Wrap(err, "marshal envelope")
	}

	return payload, nil
}

// checkForeignKeys verifies that every foreign key resolves within the same
// document. Alerts are exempt: an unmatched alert legitimately has no case.
func checkForeignKeys(doc *entity.Document) error {
	people := make(map[string]struct{}, len(doc.People))
	for _, p := range doc.People {
		people[p.ID] = struct{}{}
	}
	cases := make(map[string]struct{}, len(doc.Cases))
	for _, c := range doc.Cases {
		cases[c.ID] = struct{}{}
	}

	for _, c := range doc.Cases {
		if _, ok := people[c.PersonID]; !ok {
			return domainerrors.ErrInvalidDocument.WithDetails("case " + c.ID + " references missing person " + c.PersonID)
		}
	}
	for _, f := range doc.Financials {
		if _, ok := cases[f.CaseID]; !ok {
			return domainerrors.ErrInvalidDocument.WithDetails("financial item " + f.ID + " references missing case " + f.CaseID)
		}
	}
	for _, n := range doc.Notes {
		if _, ok := cases[n.CaseID]; !ok {
			return domainerrors.ErrInvalidDocument.WithDetails("note " + n.ID + " references missing case " + n.CaseID)
		}
	}
	for _, a := range doc.Alerts {
		if a.CaseID == "" {
			continue
		}
		if _, ok := cases[a.CaseID]; !ok {
			return domainerrors.ErrInvalidDocument.WithDetails("alert " + a.ID + " references missing case " + a.CaseID)
		}
	}

	return nil
}
