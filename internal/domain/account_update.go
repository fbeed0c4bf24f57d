package domain

import (
	"encoding/json"
	"time"
)

// AccountUpdate is a notification about a change on a WhatsApp Business
// Account (verified, banned, restricted, ...). Values are built once by
// NewAccountUpdate and are read-only afterwards.
type AccountUpdate struct {
	client Client

	id          string
	timestamp   time.Time
	phoneNumber string
	event       string

	wabaBanState                     *string
	wabaBanDate                      *string
	violationType                    *string
	lockInfoExpiration               *time.Time
	restrictionType                  *string
	restrictionInfoExpiration        *time.Time
	businessVerificationStatus       *string
	partnerClientCertificationInfo   *PartnerClientCertificationInfo
	wabaInfo                         WabaInfo
	authInternationalRateEligibility *AuthInternationalRateEligibility
}

// AccountUpdateParams carries every field of an AccountUpdate. Nil pointers
// mark absent optional fields.
type AccountUpdateParams struct {
	ID          string
	Timestamp   time.Time
	PhoneNumber string
	Event       string

	WabaBanState                     *string
	WabaBanDate                      *string
	ViolationType                    *string
	LockInfoExpiration               *time.Time
	RestrictionType                  *string
	RestrictionInfoExpiration        *time.Time
	BusinessVerificationStatus       *string
	PartnerClientCertificationInfo   *PartnerClientCertificationInfo
	WabaInfo                         WabaInfo
	AuthInternationalRateEligibility *AuthInternationalRateEligibility
}

// PartnerClientCertificationInfo describes the certification of a partner's client business.
type PartnerClientCertificationInfo struct {
	ClientBusinessID string
	Status           CertificationStatus
	RejectionReasons []RejectionReason
}

// WabaInfo identifies the business account and its owners. Always present.
type WabaInfo struct {
	WabaID                     string
	OwnerBusinessID            *string
	SolutionID                 *string
	SolutionPartnerBusinessIDs []string // nil when absent
	IsOBOToSharedMigrated      *bool
}

// AuthInternationalRateEligibility describes when international authentication rates apply.
type AuthInternationalRateEligibility struct {
	StartTime          int64 // epoch seconds
	ExceptionCountries []ExceptionCountry
}

// ExceptionCountry is a country with its own international rate start time.
type ExceptionCountry struct {
	CountryCode string
	StartTime   int64 // epoch seconds
}

// NewAccountUpdate builds an AccountUpdate from p. Every reference type in p
// is copied, so later changes to p do not reach the returned value. client is
// kept as a non-owning reference.
func NewAccountUpdate(client Client, p AccountUpdateParams) *AccountUpdate {
	u := &AccountUpdate{
		client:                     client,
		id:                         p.ID,
		timestamp:                  p.Timestamp,
		phoneNumber:                p.PhoneNumber,
		event:                      p.Event,
		wabaBanState:               cloneVal(p.WabaBanState),
		wabaBanDate:                cloneVal(p.WabaBanDate),
		violationType:              cloneVal(p.ViolationType),
		lockInfoExpiration:         cloneVal(p.LockInfoExpiration),
		restrictionType:            cloneVal(p.RestrictionType),
		restrictionInfoExpiration:  cloneVal(p.RestrictionInfoExpiration),
		businessVerificationStatus: cloneVal(p.BusinessVerificationStatus),
		wabaInfo:                   p.WabaInfo.clone(),
	}
	if p.PartnerClientCertificationInfo != nil {
		c := p.PartnerClientCertificationInfo.clone()
		u.partnerClientCertificationInfo = &c
	}
	if p.AuthInternationalRateEligibility != nil {
		e := p.AuthInternationalRateEligibility.clone()
		u.authInternationalRateEligibility = &e
	}
	return u
}

// Client returns the client the update was received by.
func (u *AccountUpdate) Client() Client { return u.client }

// ID returns the WhatsApp Business Account ID the update belongs to.
func (u *AccountUpdate) ID() string { return u.id }

func (u *AccountUpdate) Timestamp() time.Time { return u.timestamp }

func (u *AccountUpdate) PhoneNumber() string { return u.phoneNumber }

// Event returns what happened to the account, e.g. VERIFIED_ACCOUNT or DISABLED_UPDATE.
func (u *AccountUpdate) Event() string { return u.event }

func (u *AccountUpdate) WabaBanState() (string, bool) { return deref(u.wabaBanState) }

func (u *AccountUpdate) WabaBanDate() (string, bool) { return deref(u.wabaBanDate) }

func (u *AccountUpdate) ViolationType() (string, bool) { return deref(u.violationType) }

func (u *AccountUpdate) LockInfoExpiration() (time.Time, bool) { return deref(u.lockInfoExpiration) }

func (u *AccountUpdate) RestrictionType() (string, bool) { return deref(u.restrictionType) }

func (u *AccountUpdate) RestrictionInfoExpiration() (time.Time, bool) {
	return deref(u.restrictionInfoExpiration)
}

func (u *AccountUpdate) BusinessVerificationStatus() (string, bool) {
	return deref(u.businessVerificationStatus)
}

// PartnerClientCertificationInfo returns a copy of the certification info, if any.
func (u *AccountUpdate) PartnerClientCertificationInfo() (PartnerClientCertificationInfo, bool) {
	if u.partnerClientCertificationInfo == nil {
		return PartnerClientCertificationInfo{}, false
	}
	return u.partnerClientCertificationInfo.clone(), true
}

// WabaInfo returns a copy of the account info.
func (u *AccountUpdate) WabaInfo() WabaInfo { return u.wabaInfo.clone() }

// AuthInternationalRateEligibility returns a copy of the eligibility info, if any.
func (u *AccountUpdate) AuthInternationalRateEligibility() (AuthInternationalRateEligibility, bool) {
	if u.authInternationalRateEligibility == nil {
		return AuthInternationalRateEligibility{}, false
	}
	return u.authInternationalRateEligibility.clone(), true
}

// Banned reports whether the update carries ban information.
func (u *AccountUpdate) Banned() bool { return u.wabaBanState != nil }

func (c PartnerClientCertificationInfo) clone() PartnerClientCertificationInfo {
	c.RejectionReasons = cloneSlice(c.RejectionReasons)
	return c
}

func (w WabaInfo) clone() WabaInfo {
	w.OwnerBusinessID = cloneVal(w.OwnerBusinessID)
	w.SolutionID = cloneVal(w.SolutionID)
	w.SolutionPartnerBusinessIDs = cloneSlice(w.SolutionPartnerBusinessIDs)
	w.IsOBOToSharedMigrated = cloneVal(w.IsOBOToSharedMigrated)
	return w
}

func (e AuthInternationalRateEligibility) clone() AuthInternationalRateEligibility {
	e.ExceptionCountries = cloneSlice(e.ExceptionCountries)
	return e
}

func cloneVal[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// cloneSlice keeps nil distinct from empty.
func cloneSlice[T any](s []T) []T {
	if s == nil {
		return nil
	}
	return append(make([]T, 0, len(s)), s...)
}

func deref[T any](p *T) (T, bool) {
	if p == nil {
		var zero T
		return zero, false
	}
	return *p, true
}

// --- JSON ---

type accountUpdateJSON struct {
	ID                               string                                `json:"id"`
	Timestamp                        time.Time                             `json:"timestamp"`
	PhoneNumber                      string                                `json:"phone_number"`
	Event                            string                                `json:"event"`
	WabaBanState                     *string                               `json:"waba_ban_state,omitempty"`
	WabaBanDate                      *string                               `json:"waba_ban_date,omitempty"`
	ViolationType                    *string                               `json:"violation_type,omitempty"`
	LockInfoExpiration               *time.Time                            `json:"lock_info_expiration,omitempty"`
	RestrictionType                  *string                               `json:"restriction_type,omitempty"`
	RestrictionInfoExpiration        *time.Time                            `json:"restriction_info_expiration,omitempty"`
	BusinessVerificationStatus       *string                               `json:"business_verification_status,omitempty"`
	PartnerClientCertificationInfo   *partnerClientCertificationInfoJSON   `json:"partner_client_certification_info,omitempty"`
	WabaInfo                         wabaInfoJSON                          `json:"waba_info"`
	AuthInternationalRateEligibility *authInternationalRateEligibilityJSON `json:"auth_international_rate_eligibility,omitempty"`
}

type partnerClientCertificationInfoJSON struct {
	ClientBusinessID string              `json:"client_business_id"`
	Status           CertificationStatus `json:"status"`
	RejectionReasons []RejectionReason   `json:"rejection_reasons"`
}

type wabaInfoJSON struct {
	WabaID                     string   `json:"waba_id"`
	OwnerBusinessID            *string  `json:"owner_business_id"`
	SolutionID                 *string  `json:"solution_id"`
	SolutionPartnerBusinessIDs []string `json:"solution_partner_business_ids"`
	IsOBOToSharedMigrated      *bool    `json:"is_obo_to_shared_migrated"`
}

type authInternationalRateEligibilityJSON struct {
	StartTime          int64                  `json:"start_time"`
	ExceptionCountries []exceptionCountryJSON `json:"exception_countries"`
}

type exceptionCountryJSON struct {
	CountryCode string `json:"country_code"`
	StartTime   int64  `json:"start_time"`
}

// MarshalJSON renders the update with the webhook's field names. The client
// reference is not serialized.
func (u *AccountUpdate) MarshalJSON() ([]byte, error) {
	out := accountUpdateJSON{
		ID:                         u.id,
		Timestamp:                  u.timestamp,
		PhoneNumber:                u.phoneNumber,
		Event:                      u.event,
		WabaBanState:               u.wabaBanState,
		WabaBanDate:                u.wabaBanDate,
		ViolationType:              u.violationType,
		LockInfoExpiration:         u.lockInfoExpiration,
		RestrictionType:            u.restrictionType,
		RestrictionInfoExpiration:  u.restrictionInfoExpiration,
		BusinessVerificationStatus: u.businessVerificationStatus,
		WabaInfo: wabaInfoJSON{
			WabaID:                     u.wabaInfo.WabaID,
			OwnerBusinessID:            u.wabaInfo.OwnerBusinessID,
			SolutionID:                 u.wabaInfo.SolutionID,
			SolutionPartnerBusinessIDs: u.wabaInfo.SolutionPartnerBusinessIDs,
			IsOBOToSharedMigrated:      u.wabaInfo.IsOBOToSharedMigrated,
		},
	}
	if c := u.partnerClientCertificationInfo; c != nil {
		out.PartnerClientCertificationInfo = &partnerClientCertificationInfoJSON{
			ClientBusinessID: c.ClientBusinessID,
			Status:           c.Status,
			RejectionReasons: c.RejectionReasons,
		}
	}
	if e := u.authInternationalRateEligibility; e != nil {
		ej := &authInternationalRateEligibilityJSON{StartTime: e.StartTime}
		if e.ExceptionCountries != nil {
			ej.ExceptionCountries = make([]exceptionCountryJSON, len(e.ExceptionCountries))
			for i, c := range e.ExceptionCountries {
				ej.ExceptionCountries[i] = exceptionCountryJSON(c)
			}
		}
		out.AuthInternationalRateEligibility = ej
	}
	return json.Marshal(out)
}
