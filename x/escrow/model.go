package escrow

import (
	"github.com/lastwill-labs/weave"
	"github.com/lastwill-labs/weave/coin"
	"github.com/lastwill-labs/weave/errors"
	"github.com/lastwill-labs/weave/orm"
)

const (
	// BucketName is where escrow records are stored.
	BucketName = "lastwill"

	hashSize        = 32
	keyMaterialSize = 32
	maxContentID    = 64
	// MaxSecretSize is the hard limit of the encrypted secret. The
	// configuration may lower it.
	MaxSecretSize = 4096
)

// Record is the state of one testator to beneficiary relationship.
type Record struct {
	Metadata *weave.Metadata `json:"metadata"`

	Testator    weave.Address `json:"testator"`
	Beneficiary weave.Address `json:"beneficiary"`
	Verifier    weave.Address `json:"verifier"`

	IdentityHash       weave.HexBytes `json:"identity_hash"`
	EmailHash          weave.HexBytes `json:"email_hash"`
	DocumentIDHash     weave.HexBytes `json:"document_id_hash"`
	ContentID          []byte         `json:"content_id"`
	ContentIDValidator []byte         `json:"content_id_validator"`

	WarningTimeout weave.UnixDuration `json:"warning_timeout"`
	TotalTimeout   weave.UnixDuration `json:"total_timeout"`

	// Deposit is the value released to the beneficiary. It is zeroed when
	// released.
	Deposit *coin.Coin `json:"deposit"`
	// Bond is the storage bond moved into custody at creation.
	Bond *coin.Coin `json:"bond"`

	LastLivenessAt weave.UnixTime `json:"last_liveness_at"`
	CreatedAt      weave.UnixTime `json:"created_at"`

	LivenessRoot       weave.HexBytes `json:"liveness_root"`
	LivenessCommitment weave.HexBytes `json:"liveness_commitment"`

	EncryptedSecret      []byte `json:"encrypted_secret,omitempty"`
	UnwrappedKeyMaterial []byte `json:"unwrapped_key_material,omitempty"`

	Executed  bool `json:"executed"`
	DebugMode bool `json:"debug_mode"`

	// Address holds the custody funds.
	Address weave.Address `json:"address"`
}

var _ orm.Model = (*Record)(nil)

func (r *Record) Marshal() ([]byte, error) { return weave.EncodeBinary(r) }

func (r *Record) Unmarshal(bz []byte) error { return weave.DecodeBinary(bz, r) }

// Validate ensures the record is consistent.
func (r *Record) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", r.Metadata.Validate())
	errs = errors.AppendField(errs, "Testator", r.Testator.Validate())
	errs = errors.AppendField(errs, "Beneficiary", r.Beneficiary.Validate())
	errs = errors.AppendField(errs, "Verifier", r.Verifier.Validate())
	errs = errors.AppendField(errs, "IdentityHash", validateDigest(r.IdentityHash, false))
	errs = errors.AppendField(errs, "EmailHash", validateDigest(r.EmailHash, false))
	errs = errors.AppendField(errs, "DocumentIDHash", validateDigest(r.DocumentIDHash, false))
	errs = errors.AppendField(errs, "ContentID", validateContentID(r.ContentID))
	errs = errors.AppendField(errs, "ContentIDValidator", validateContentID(r.ContentIDValidator))
	errs = errors.AppendField(errs, "TotalTimeout", validateTimeouts(r.WarningTimeout, r.TotalTimeout))
	errs = errors.AppendField(errs, "Deposit", validateAmount(r.Deposit))
	errs = errors.AppendField(errs, "Bond", validateAmount(r.Bond))
	errs = errors.AppendField(errs, "LastLivenessAt", r.LastLivenessAt.Validate())
	errs = errors.AppendField(errs, "CreatedAt", r.CreatedAt.Validate())
	if r.LastLivenessAt < r.CreatedAt {
		errs = errors.Append(errs, errors.Field("LastLivenessAt", errors.ErrState, "before creation"))
	}
	errs = errors.AppendField(errs, "LivenessRoot", validateDigest(r.LivenessRoot, true))
	errs = errors.AppendField(errs, "LivenessCommitment", validateDigest(r.LivenessCommitment, true))
	if len(r.EncryptedSecret) > MaxSecretSize {
		errs = errors.Append(errs, errors.Field("EncryptedSecret", errors.ErrInput, "longer than %d", MaxSecretSize))
	}
	if n := len(r.UnwrappedKeyMaterial); n != 0 && n != keyMaterialSize {
		errs = errors.Append(errs, errors.Field("UnwrappedKeyMaterial", errors.ErrInput, "must be %d bytes", keyMaterialSize))
	}
	errs = errors.AppendField(errs, "Address", r.Address.Validate())
	return errs
}

// Redact returns a copy without the secret and the key material.
func (r *Record) Redact() *Record {
	cpy := *r
	cpy.EncryptedSecret = nil
	cpy.UnwrappedKeyMaterial = nil
	return &cpy
}

// Disclosure is released to the beneficiary on execution.
type Disclosure struct {
	EncryptedSecret      []byte `json:"encrypted_secret"`
	UnwrappedKeyMaterial []byte `json:"unwrapped_key_material"`
}

func (d *Disclosure) Marshal() ([]byte, error) { return weave.EncodeBinary(d) }

func (d *Disclosure) Unmarshal(bz []byte) error { return weave.DecodeBinary(bz, d) }

// RecordKey returns the primary key of the record of given parties.
func RecordKey(testator, beneficiary weave.Address) []byte {
	key := make([]byte, 0, len(testator)+len(beneficiary))
	key = append(key, testator...)
	return append(key, beneficiary...)
}

// RecordAddress returns the custody address of the record of given
// parties. It is derived from a fixed domain tag and both identities.
func RecordAddress(testator, beneficiary weave.Address) weave.Address {
	return weave.NewCondition("lastwill", "vault", RecordKey(testator, beneficiary)).Address()
}

func indexBeneficiary(obj orm.Object) ([]byte, error) {
	r, ok := obj.Value().(*Record)
	if !ok {
		return nil, errors.Wrapf(errors.ErrType, "%T", obj.Value())
	}
	return r.Beneficiary, nil
}

func indexVerifier(obj orm.Object) ([]byte, error) {
	r, ok := obj.Value().(*Record)
	if !ok {
		return nil, errors.Wrapf(errors.ErrType, "%T", obj.Value())
	}
	return r.Verifier, nil
}

// NewBucket returns the bucket of escrow records, keyed by RecordKey and
// indexed by beneficiary and verifier.
func NewBucket() orm.ModelBucket {
	return orm.NewModelBucket(BucketName, &Record{},
		orm.WithIndex("beneficiary", indexBeneficiary, false),
		orm.WithIndex("verifier", indexVerifier, false),
	)
}

func validateDigest(d []byte, optional bool) error {
	if optional && len(d) == 0 {
		return nil
	}
	if len(d) != hashSize {
		return errors.Wrapf(errors.ErrInput, "must be %d bytes", hashSize)
	}
	return nil
}

func validateContentID(id []byte) error {
	if len(id) == 0 {
		return errors.ErrEmpty
	}
	if len(id) > maxContentID {
		return errors.Wrapf(errors.ErrInput, "longer than %d", maxContentID)
	}
	return nil
}

func validateTimeouts(warning, total weave.UnixDuration) error {
	if total <= 0 {
		return errors.Wrap(errors.ErrInput, "must be positive")
	}
	if warning < 0 || warning > total {
		return errors.Wrap(errors.ErrInput, "warning timeout must be between zero and total timeout")
	}
	return nil
}

// validateAmount accepts a missing or zero amount.
func validateAmount(c *coin.Coin) error {
	if coin.IsEmpty(c) {
		return nil
	}
	if err := c.Validate(); err != nil {
		return err
	}
	if !c.IsPositive() {
		return errors.Wrap(errors.ErrAmount, "negative")
	}
	return nil
}
