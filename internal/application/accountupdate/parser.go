package accountupdate

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/go-waba-webhooks/internal/domain"
)

// Parser turns account_update webhook notifications into domain.AccountUpdate
// values. It holds no mutable state and is safe for concurrent use.
type Parser struct {
	loc *time.Location
}

// NewParser returns a Parser that converts epoch timestamps into loc.
// A nil loc means UTC.
func NewParser(loc *time.Location) *Parser {
	if loc == nil {
		loc = time.UTC
	}
	return &Parser{loc: loc}
}

// Decode reads exactly one JSON object from r. Numbers are kept as
// json.Number so large epoch values survive decoding exactly.
func Decode(r io.Reader) (map[string]any, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: decode body: %v", domain.ErrMalformedPayload, err)
	}
	if raw == nil {
		return nil, fmt.Errorf("%w: decode body: expected object", domain.ErrMalformedPayload)
	}
	var extra json.RawMessage
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: decode body: trailing data after object", domain.ErrMalformedPayload)
	}
	return raw, nil
}

// ParseJSON decodes body and parses it.
func (p *Parser) ParseJSON(body []byte, client domain.Client) (*domain.AccountUpdate, error) {
	raw, err := Decode(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	return p.Parse(raw, client)
}

// Field returns entry[0].changes[0].field of a payload, with the same path
// errors Parse reports.
func Field(raw map[string]any) (string, error) {
	entry, err := node{m: raw}.first("entry")
	if err != nil {
		return "", err
	}
	change, err := entry.first("changes")
	if err != nil {
		return "", err
	}
	return change.requireStr("field")
}

// Parse reads entry[0] and its changes[0].value from raw. Only the first
// entry and change are considered. Missing optional sub-objects leave the
// matching fields absent; any missing or mistyped required path fails the
// whole call with an error wrapping domain.ErrMalformedPayload.
func (p *Parser) Parse(raw map[string]any, client domain.Client) (*domain.AccountUpdate, error) {
	entry, err := node{m: raw}.first("entry")
	if err != nil {
		return nil, err
	}
	change, err := entry.first("changes")
	if err != nil {
		return nil, err
	}
	value, err := change.requireObject("value")
	if err != nil {
		return nil, err
	}

	var params domain.AccountUpdateParams
	if params.ID, err = entry.requireStr("id"); err != nil {
		return nil, err
	}
	ts, err := entry.requireInteger("time")
	if err != nil {
		return nil, err
	}
	params.Timestamp = p.epoch(ts)
	if params.PhoneNumber, err = value.requireStr("phone_number"); err != nil {
		return nil, err
	}
	if params.Event, err = value.requireStr("event"); err != nil {
		return nil, err
	}
	if params.BusinessVerificationStatus, err = value.str("business_verification_status"); err != nil {
		return nil, err
	}

	for _, step := range []func(node, *domain.AccountUpdateParams) error{
		p.banInfo,
		p.violationInfo,
		p.lockInfo,
		p.restrictionInfo,
		p.certificationInfo,
		p.wabaInfo,
		p.rateEligibility,
	} {
		if err := step(value, &params); err != nil {
			return nil, err
		}
	}
	return domain.NewAccountUpdate(client, params), nil
}

func (p *Parser) epoch(sec int64) time.Time {
	return time.Unix(sec, 0).In(p.loc)
}

func (p *Parser) epochPtr(sec *int64) *time.Time {
	if sec == nil {
		return nil
	}
	t := p.epoch(*sec)
	return &t
}

func (p *Parser) banInfo(value node, params *domain.AccountUpdateParams) error {
	ban, ok, err := value.object("ban_info")
	if err != nil || !ok {
		return err
	}
	if params.WabaBanState, err = ban.str("waba_ban_state"); err != nil {
		return err
	}
	params.WabaBanDate, err = ban.str("waba_ban_date")
	return err
}

func (p *Parser) violationInfo(value node, params *domain.AccountUpdateParams) error {
	v, ok, err := value.object("violation_info")
	if err != nil || !ok {
		return err
	}
	params.ViolationType, err = v.str("violation_type")
	return err
}

func (p *Parser) lockInfo(value node, params *domain.AccountUpdateParams) error {
	lock, ok, err := value.object("lock_info")
	if err != nil || !ok {
		return err
	}
	exp, err := lock.integer("expiration")
	if err != nil {
		return err
	}
	params.LockInfoExpiration = p.epochPtr(exp)
	return nil
}

func (p *Parser) restrictionInfo(value node, params *domain.AccountUpdateParams) error {
	r, ok, err := value.object("restriction_info")
	if err != nil || !ok {
		return err
	}
	if params.RestrictionType, err = r.str("restriction_type"); err != nil {
		return err
	}
	exp, err := r.integer("expiration")
	if err != nil {
		return err
	}
	params.RestrictionInfoExpiration = p.epochPtr(exp)
	return nil
}

func (p *Parser) certificationInfo(value node, params *domain.AccountUpdateParams) error {
	c, ok, err := value.object("partner_client_certification_info")
	if err != nil || !ok {
		return err
	}
	var info domain.PartnerClientCertificationInfo
	if info.ClientBusinessID, err = c.requireStr("client_business_id"); err != nil {
		return err
	}
	status, err := c.requireStr("status")
	if err != nil {
		return err
	}
	info.Status = domain.ParseCertificationStatus(status)
	if info.RejectionReasons, err = rejectionReasons(c); err != nil {
		return err
	}
	params.PartnerClientCertificationInfo = &info
	return nil
}

// rejectionReasons accepts either a list of reasons or a single reason.
func rejectionReasons(c node) ([]domain.RejectionReason, error) {
	v, ok := c.lookup("rejection_reasons")
	if !ok {
		return nil, nil
	}
	if s, isStr := v.(string); isStr {
		return []domain.RejectionReason{domain.ParseRejectionReason(s)}, nil
	}
	names, err := c.strList("rejection_reasons")
	if err != nil {
		return nil, err
	}
	reasons := make([]domain.RejectionReason, len(names))
	for i, name := range names {
		reasons[i] = domain.ParseRejectionReason(name)
	}
	return reasons, nil
}

func (p *Parser) wabaInfo(value node, params *domain.AccountUpdateParams) error {
	w, err := value.requireObject("waba_info")
	if err != nil {
		return err
	}
	info := &params.WabaInfo
	if info.WabaID, err = w.requireStr("waba_id"); err != nil {
		return err
	}
	if info.OwnerBusinessID, err = w.str("owner_business_id"); err != nil {
		return err
	}
	if info.SolutionID, err = w.str("solution_id"); err != nil {
		return err
	}
	if info.SolutionPartnerBusinessIDs, err = w.strList("solution_partner_business_ids"); err != nil {
		return err
	}
	info.IsOBOToSharedMigrated, err = w.boolean("is_obo_to_shared_migrated")
	return err
}

func (p *Parser) rateEligibility(value node, params *domain.AccountUpdateParams) error {
	e, ok, err := value.object("auth_international_rate_eligibility")
	if err != nil || !ok {
		return err
	}
	var out domain.AuthInternationalRateEligibility
	if out.StartTime, err = e.requireInteger("start_time"); err != nil {
		return err
	}
	countries, err := e.list("exception_countries")
	if err != nil {
		return err
	}
	if countries != nil {
		out.ExceptionCountries = make([]domain.ExceptionCountry, len(countries))
		for i, v := range countries {
			path := fmt.Sprintf("%s[%d]", e.child("exception_countries"), i)
			m, ok := v.(map[string]any)
			if !ok {
				return malformed(path, "expected object, got %T", v)
			}
			c := node{path: path, m: m}
			if out.ExceptionCountries[i].CountryCode, err = c.requireStr("country_code"); err != nil {
				return err
			}
			if out.ExceptionCountries[i].StartTime, err = c.requireInteger("start_time"); err != nil {
				return err
			}
		}
	}
	params.AuthInternationalRateEligibility = &out
	return nil
}
