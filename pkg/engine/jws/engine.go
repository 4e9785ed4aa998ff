/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package jws is a credential engine issuing JWT credentials signed with an Ed25519 issuer key.
package jws

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"time"

	"github.com/bluele/gcache"
	"github.com/btcsuite/btcutil/base58"
	"github.com/go-jose/go-jose/v3"
	"github.com/go-jose/go-jose/v3/jwt"
	"github.com/google/uuid"
	"github.com/hyperledger/aries-framework-go/component/log"
	"github.com/multiformats/go-multibase"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

var logger = log.New("aries-issuer/engine/jws")

const (
	defaultOfferTTL       = 24 * time.Hour
	defaultOfferCacheSize = 10000

	ed25519PubKeyMultiCodec = 0xed
	didLength               = 16
	nonceBits               = 80
)

// ErrUnknownOffer is returned when a credential is requested for an offer that was not signed with the
// issuer key or has expired.
var ErrUnknownOffer = errors.New("offer is unknown or expired")

// Opt configures the Engine.
type Opt func(e *Engine)

// WithOfferTTL sets how long an offer can be answered.
func WithOfferTTL(ttl time.Duration) Opt {
	return func(e *Engine) {
		e.offerTTL = ttl
	}
}

// WithOfferCacheSize bounds the number of answered offers remembered for repeated requests.
func WithOfferCacheSize(size int) Opt {
	return func(e *Engine) {
		e.cacheSize = size
	}
}

// WithSeed derives the issuer key from a 32 byte seed.
func WithSeed(seed []byte) Opt {
	return func(e *Engine) {
		e.seed = seed
	}
}

// Engine creates offers and issues signed credentials.
type Engine struct {
	priv      ed25519.PrivateKey
	pub       ed25519.PublicKey
	did       string
	verKey    string
	kid       string
	seed      []byte
	offerTTL  time.Duration
	cacheSize int
	issued    gcache.Cache
	now       func() time.Time
}

// New returns an engine. Without a seed a random issuer key is generated.
func New(opts ...Opt) (*Engine, error) {
	e := &Engine{
		offerTTL:  defaultOfferTTL,
		cacheSize: defaultOfferCacheSize,
		now:       time.Now,
	}

	for _, opt := range opts {
		opt(e)
	}

	if e.seed == nil {
		e.seed = make([]byte, ed25519.SeedSize)

		if _, err := rand.Read(e.seed); err != nil {
			return nil, fmt.Errorf("generate seed: %w", err)
		}
	}

	if len(e.seed) != ed25519.SeedSize {
		return nil, fmt.Errorf("seed must be %d bytes, got %d", ed25519.SeedSize, len(e.seed))
	}

	e.priv = ed25519.NewKeyFromSeed(e.seed)
	e.pub = e.priv.Public().(ed25519.PublicKey) // nolint: forcetypeassert
	e.verKey = base58.Encode(e.pub)
	e.did = base58.Encode(e.pub[:didLength])

	kid, err := keyID(e.pub)
	if err != nil {
		return nil, err
	}

	e.kid = kid
	e.issued = gcache.New(e.cacheSize).LRU().Build()

	logger.Infof("credential engine ready: issuer DID [%s] key [%s]", e.did, e.kid)

	return e, nil
}

// keyID returns the did:key verification method of pub.
func keyID(pub ed25519.PublicKey) (string, error) {
	prefix := make([]byte, binary.MaxVarintLen64)
	n := binary.PutUvarint(prefix, ed25519PubKeyMultiCodec)

	fingerprint, err := multibase.Encode(multibase.Base58BTC, append(prefix[:n], pub...))
	if err != nil {
		return "", fmt.Errorf("encode key fingerprint: %w", err)
	}

	return "did:key:" + fingerprint + "#" + fingerprint, nil
}

// IssuerDID returns the issuer DID.
func (e *Engine) IssuerDID() string {
	return e.did
}

// VerKey returns the base58 issuer verification key.
func (e *Engine) VerKey() string {
	return e.verKey
}

// KeyID returns the key ID put in credential headers.
func (e *Engine) KeyID() string {
	return e.kid
}

// CreateOffer builds an offer for the given credential definition. The offer carries an issuer-signed
// proof binding its nonce and credential definition until it expires, so any engine holding the same
// key can answer it.
func (e *Engine) CreateOffer(_ context.Context, credDefID string, attrs map[string]string) (map[string]interface{}, error) {
	if credDefID == "" {
		return nil, errors.New("credential definition ID is mandatory")
	}

	nonce, err := newNonce()
	if err != nil {
		return nil, err
	}

	names := maps.Keys(attrs)
	slices.Sort(names)

	now := e.now()

	proof, err := e.sign(&offerClaims{
		Claims: &jwt.Claims{
			ID:       nonce,
			Issuer:   e.did,
			IssuedAt: jwt.NewNumericDate(now),
			Expiry:   jwt.NewNumericDate(now.Add(e.offerTTL)),
		},
		CredDefID: credDefID,
	})
	if err != nil {
		return nil, err
	}

	offer := map[string]interface{}{
		"schema_id":   schemaID(e.did, credDefID),
		"cred_def_id": credDefID,
		"issuer_did":  e.did,
		"nonce":       nonce,
		"attr_names":  names,
		"key_correctness_proof": map[string]interface{}{
			"kid":    e.kid,
			"verkey": e.verKey,
		},
		"offer_proof": proof,
	}

	logger.Debugf("offer created for cred def [%s] nonce [%s]", credDefID, nonce)

	return offer, nil
}

// CreateCredential issues a credential answering the given request for offer. An offer yields a single
// credential: asking again for the same offer returns the credential issued first, so a caller can retry
// a failed delivery.
func (e *Engine) CreateCredential(_ context.Context, offer, request map[string]interface{},
	attrs map[string]string) (map[string]interface{}, error) {
	nonce, _ := offer["nonce"].(string)
	credDefID, _ := offer["cred_def_id"].(string)

	expiry, err := e.verifyOffer(offer, nonce, credDefID)
	if err != nil {
		return nil, fmt.Errorf("nonce [%s]: %w", nonce, err)
	}

	if cached, err := e.issued.Get(nonce); err == nil {
		logger.Debugf("credential for nonce [%s] already issued", nonce)

		return copyCredential(cached.(map[string]interface{})), nil // nolint: forcetypeassert
	}

	if reqCredDef, ok := request["cred_def_id"].(string); ok && reqCredDef != credDefID {
		return nil, fmt.Errorf("request is for cred def [%s], offer is for [%s]", reqCredDef, credDefID)
	}

	proverDID, _ := request["prover_did"].(string)
	values := EncodeValues(attrs)

	claims := &CredentialClaims{
		Claims: &jwt.Claims{
			ID:       uuid.New().String(),
			Issuer:   e.did,
			Subject:  proverDID,
			IssuedAt: jwt.NewNumericDate(e.now()),
		},
		SchemaID:   schemaID(e.did, credDefID),
		CredDefID:  credDefID,
		OfferNonce: nonce,
		Values:     values,
	}

	signed, err := e.sign(claims)
	if err != nil {
		return nil, err
	}

	cred := map[string]interface{}{
		"schema_id":   claims.SchemaID,
		"cred_def_id": credDefID,
		"values":      values,
		"signature":   signed,
		"kid":         e.kid,
	}

	ttl := expiry.Sub(e.now())
	if ttl <= 0 {
		ttl = time.Second
	}

	if err := e.issued.SetWithExpire(nonce, cred, ttl); err != nil {
		return nil, fmt.Errorf("remember credential: %w", err)
	}

	return copyCredential(cred), nil
}

// verifyOffer checks the offer proof and returns when the offer expires.
func (e *Engine) verifyOffer(offer map[string]interface{}, nonce, credDefID string) (time.Time, error) {
	proof, ok := offer["offer_proof"].(string)
	if !ok || nonce == "" {
		return time.Time{}, ErrUnknownOffer
	}

	tok, err := jwt.ParseSigned(proof)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", ErrUnknownOffer, err)
	}

	claims := &offerClaims{Claims: &jwt.Claims{}}

	if err := tok.Claims(e.pub, claims); err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", ErrUnknownOffer, err)
	}

	err = claims.ValidateWithLeeway(jwt.Expected{ID: nonce, Issuer: e.did, Time: e.now()}, 0)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", ErrUnknownOffer, err)
	}

	if claims.CredDefID != credDefID || claims.Expiry == nil {
		return time.Time{}, ErrUnknownOffer
	}

	return claims.Expiry.Time(), nil
}

func copyCredential(cred map[string]interface{}) map[string]interface{} {
	c := make(map[string]interface{}, len(cred))
	for k, v := range cred {
		c[k] = v
	}

	return c
}

func (e *Engine) sign(claims interface{}) (string, error) {
	key := jose.SigningKey{Algorithm: jose.EdDSA, Key: e.priv}

	var signerOpts = &jose.SignerOptions{}
	signerOpts.WithType("JWT")
	signerOpts.WithHeader("kid", e.kid)

	signer, err := jose.NewSigner(key, signerOpts)
	if err != nil {
		return "", fmt.Errorf("failed to create signer: %w", err)
	}

	compact, err := jwt.Signed(signer).Claims(claims).CompactSerialize()
	if err != nil {
		return "", fmt.Errorf("failed to sign credential: %w", err)
	}

	return compact, nil
}

// Verify checks a credential signature and returns its claims.
func (e *Engine) Verify(credential map[string]interface{}) (*CredentialClaims, error) {
	compact, ok := credential["signature"].(string)
	if !ok {
		return nil, errors.New("credential has no signature")
	}

	tok, err := jwt.ParseSigned(compact)
	if err != nil {
		return nil, fmt.Errorf("parse credential: %w", err)
	}

	claims := &CredentialClaims{Claims: &jwt.Claims{}}

	if err := tok.Claims(e.pub, claims); err != nil {
		return nil, fmt.Errorf("verify credential: %w", err)
	}

	return claims, nil
}

// offerClaims are the claims of an offer proof. The JWT ID is the offer nonce.
type offerClaims struct {
	*jwt.Claims

	CredDefID string `json:"cred_def_id"`
}

// CredentialClaims are the JWT claims of an issued credential.
type CredentialClaims struct {
	*jwt.Claims

	SchemaID   string                    `json:"schema_id"`
	CredDefID  string                    `json:"cred_def_id"`
	OfferNonce string                    `json:"offer_nonce"`
	Values     map[string]AttributeValue `json:"values"`
}

// AttributeValue is a credential attribute in raw and encoded form.
type AttributeValue struct {
	Raw     string `json:"raw"`
	Encoded string `json:"encoded"`
}

// EncodeValues encodes every attribute. 32 bit integers are kept as they are,
// anything else is the decimal form of its SHA-256 digest.
func EncodeValues(attrs map[string]string) map[string]AttributeValue {
	names := maps.Keys(attrs)
	slices.Sort(names)

	values := make(map[string]AttributeValue, len(names))

	for _, name := range names {
		raw := attrs[name]
		values[name] = AttributeValue{Raw: raw, Encoded: encode(raw)}
	}

	return values
}

func encode(raw string) string {
	if i, err := strconv.ParseInt(raw, 10, 32); err == nil {
		return strconv.FormatInt(i, 10)
	}

	digest := sha256.Sum256([]byte(raw))

	return new(big.Int).SetBytes(digest[:]).String()
}

func schemaID(did, credDefID string) string {
	return did + ":2:" + credDefID + ":1.0"
}

func newNonce() (string, error) {
	n, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), nonceBits))
	if err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}

	return n.String(), nil
}
