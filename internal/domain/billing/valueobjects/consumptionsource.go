package valueobjects

// ConsumptionSource classifies where a quota-consuming message originated.
type ConsumptionSource string

const (
	SourceAgent   ConsumptionSource = "agent"
	SourceBot     ConsumptionSource = "bot"
	SourceAPI     ConsumptionSource = "api"
	SourceWebhook ConsumptionSource = "webhook"
	SourceSystem  ConsumptionSource = "system"
)

func (s ConsumptionSource) String() string {
	return string(s)
}

func (s ConsumptionSource) IsValid() bool {
	switch s {
	case SourceAgent, SourceBot, SourceAPI, SourceWebhook, SourceSystem:
		return true
	default:
		return false
	}
}

// MessageKind is the platform message type a consumption record refers to.
type MessageKind string

const (
	MessageKindIncoming  MessageKind = "incoming"
	MessageKindOutgoing  MessageKind = "outgoing"
	MessageKindActivity  MessageKind = "activity"
	MessageKindTemplate  MessageKind = "template"
	MessageKindInputCSAT MessageKind = "input_csat"
)

func (k MessageKind) String() string {
	return string(k)
}

func (k MessageKind) IsValid() bool {
	switch k {
	case MessageKindIncoming, MessageKindOutgoing, MessageKindActivity, MessageKindTemplate, MessageKindInputCSAT:
		return true
	default:
		return false
	}
}
