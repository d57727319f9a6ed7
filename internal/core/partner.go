package core

// PartnerKind discriminates Partner.
type PartnerKind uint8

const (
	PartnerNone PartnerKind = iota
	PartnerReal
	PartnerSimulated
)

func (k PartnerKind) String() string {
	switch k {
	case PartnerReal:
		return "real"
	case PartnerSimulated:
		return "simulated"
	default:
		return "none"
	}
}

// Partner is a session's link to its counterpart. A real partner is
// addressed by session id, a simulated one only by its persona name,
// so a persona can never be looked up in the registry.
type Partner struct {
	kind    PartnerKind
	sid     SessionID
	persona string
}

// NoPartner is the zero value.
var NoPartner = Partner{}

func RealPartner(sid SessionID) Partner {
	return Partner{kind: PartnerReal, sid: sid}
}

func SimulatedPartner(persona string) Partner {
	return Partner{kind: PartnerSimulated, persona: persona}
}

func (p Partner) Kind() PartnerKind { return p.kind }

func (p Partner) IsNone() bool { return p.kind == PartnerNone }

// Real returns the partner session id when the partner is a human.
func (p Partner) Real() (SessionID, bool) {
	return p.sid, p.kind == PartnerReal
}

// Simulated returns the persona name when the partner is simulated.
func (p Partner) Simulated() (string, bool) {
	return p.persona, p.kind == PartnerSimulated
}

func (p Partner) String() string {
	switch p.kind {
	case PartnerReal:
		return "real:" + string(p.sid)
	case PartnerSimulated:
		return "simulated:" + p.persona
	default:
		return "none"
	}
}
