package gnupg

import "strings"

// Unavailable fills positional fields missing from a short listing line.
const Unavailable = "Unavailable"

// Column indices shared by the uid, fpr, grp and sig lines.
const (
	colKeyID    = 4
	colUserID   = 9
	colSigClass = 10
)

// Record holds the positional columns of a pub, sec, sub or ssb line, in
// the order gpg documents them for --with-colons output.
type Record struct {
	Type         string `json:"type"`
	Validity     string `json:"validity"`
	Length       string `json:"length"`
	Algorithm    string `json:"algorithm"`
	KeyID        string `json:"key_id"`
	CreationDate string `json:"creation_date"`
	Expires      string `json:"expires"`
	Dummy        string `json:"dummy"`
	Ownertrust   string `json:"ownertrust"`
	UID          string `json:"uid"`
	SigClass     string `json:"sig_class"`
	Capabilities string `json:"capabilities"`
	Issuer       string `json:"issuer"`
	Flag         string `json:"flag"`
	Token        string `json:"token"`
	Hash         string `json:"hash"`
	Curve        string `json:"curve"`
	Compliance   string `json:"compliance"`
	Updated      string `json:"updated"`
	Origin       string `json:"origin"`
	Comment      string `json:"comment"`
}

// recordColumns maps column index to Record field. Primary records use all
// 21 columns.
var recordColumns = []func(*Record) *string{
	func(r *Record) *string { return &r.Type },
	func(r *Record) *string { return &r.Validity },
	func(r *Record) *string { return &r.Length },
	func(r *Record) *string { return &r.Algorithm },
	func(r *Record) *string { return &r.KeyID },
	func(r *Record) *string { return &r.CreationDate },
	func(r *Record) *string { return &r.Expires },
	func(r *Record) *string { return &r.Dummy },
	func(r *Record) *string { return &r.Ownertrust },
	func(r *Record) *string { return &r.UID },
	func(r *Record) *string { return &r.SigClass },
	func(r *Record) *string { return &r.Capabilities },
	func(r *Record) *string { return &r.Issuer },
	func(r *Record) *string { return &r.Flag },
	func(r *Record) *string { return &r.Token },
	func(r *Record) *string { return &r.Hash },
	func(r *Record) *string { return &r.Curve },
	func(r *Record) *string { return &r.Compliance },
	func(r *Record) *string { return &r.Updated },
	func(r *Record) *string { return &r.Origin },
	func(r *Record) *string { return &r.Comment },
}

func newRecord(fields []string) Record {
	var r Record
	for i, field := range recordColumns {
		v := Unavailable
		if i < len(fields) {
			v = fields[i]
		}
		*field(&r) = v
	}
	return r
}

// Signature is one certification from a sig line.
type Signature struct {
	KeyID  string `json:"key_id"`
	UserID string `json:"user_id"`
	Class  string `json:"class"`
}

// Subkey is a sub or ssb record.
type Subkey struct {
	Record
	Fingerprint string `json:"fingerprint"`
	Keygrip     string `json:"keygrip"`
}

// Key is a pub or sec record with everything that followed it.
type Key struct {
	Record
	Fingerprint string      `json:"fingerprint"`
	Keygrip     string      `json:"keygrip"`
	UserIDs     []string    `json:"user_ids,omitempty"`
	Signatures  []Signature `json:"signatures,omitempty"`
	Subkeys     []Subkey    `json:"subkeys,omitempty"`
}

// keyListDecoder accumulates keys while walking listing lines.
type keyListDecoder struct {
	keys     []Key
	current  *Key
	seen     map[string]bool
	inSubkey bool
}

type lineHandler func(d *keyListDecoder, fields []string)

var keyListHandlers = map[string]lineHandler{
	"pub": (*keyListDecoder).primary,
	"sec": (*keyListDecoder).primary,
	"uid": (*keyListDecoder).uid,
	"fpr": (*keyListDecoder).fpr,
	"sub": (*keyListDecoder).subkey,
	"ssb": (*keyListDecoder).subkey,
	"sig": (*keyListDecoder).sig,
	"grp": (*keyListDecoder).grp,
}

// DecodeKeyList decodes gpg --with-colons key listing output. Lines with
// other record types are skipped and a blank line ends decoding.
func DecodeKeyList(raw string) []Key {
	d := &keyListDecoder{seen: make(map[string]bool)}
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			break
		}
		fields := strings.Split(line, ":")
		handler, ok := keyListHandlers[fields[0]]
		if !ok {
			continue
		}
		handler(d, fields)
		d.seen[fields[0]] = true
	}
	d.finish()
	return d.keys
}

// finish appends the key under construction, if any.
func (d *keyListDecoder) finish() {
	if d.current != nil {
		d.keys = append(d.keys, *d.current)
		d.current = nil
	}
}

func (d *keyListDecoder) primary(fields []string) {
	if d.seen["pub"] || d.seen["sec"] {
		d.finish()
		clear(d.seen)
	}
	key := Key{Record: newRecord(fields)}
	if key.UID != "" && key.UID != Unavailable {
		key.UserIDs = append(key.UserIDs, key.UID)
	}
	d.current = &key
	d.inSubkey = false
}

func (d *keyListDecoder) uid(fields []string) {
	v, ok := column(fields, colUserID)
	if !ok || d.current == nil {
		return
	}
	d.current.UserIDs = append(d.current.UserIDs, v)
}

func (d *keyListDecoder) fpr(fields []string) {
	v, ok := column(fields, colUserID)
	if !ok {
		return
	}
	if sub := d.currentSubkey(); sub != nil {
		sub.Fingerprint = v
	} else if d.current != nil && !d.inSubkey {
		d.current.Fingerprint = v
	}
}

func (d *keyListDecoder) grp(fields []string) {
	v, ok := column(fields, colUserID)
	if !ok {
		return
	}
	if sub := d.currentSubkey(); sub != nil {
		sub.Keygrip = v
	} else if d.current != nil && !d.inSubkey {
		d.current.Keygrip = v
	}
}

func (d *keyListDecoder) subkey(fields []string) {
	if d.current == nil {
		return
	}
	d.current.Subkeys = append(d.current.Subkeys, Subkey{Record: newRecord(fields)})
	d.inSubkey = true
}

func (d *keyListDecoder) sig(fields []string) {
	if d.current == nil || len(fields) <= colSigClass {
		return
	}
	d.current.Signatures = append(d.current.Signatures, Signature{
		KeyID:  fields[colKeyID],
		UserID: fields[colUserID],
		Class:  fields[colSigClass],
	})
}

// currentSubkey returns the most recent subkey while in subkey context.
func (d *keyListDecoder) currentSubkey() *Subkey {
	if !d.inSubkey || d.current == nil || len(d.current.Subkeys) == 0 {
		return nil
	}
	return &d.current.Subkeys[len(d.current.Subkeys)-1]
}

func column(fields []string, i int) (string, bool) {
	if i >= len(fields) {
		return "", false
	}
	return fields[i], true
}

// Fingerprints returns the primary fingerprints of keys, in order.
func Fingerprints(keys []Key) []string {
	var fprs []string
	for _, k := range keys {
		if k.Fingerprint != "" {
			fprs = append(fprs, k.Fingerprint)
		}
	}
	return fprs
}
