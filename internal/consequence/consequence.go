package consequence

// Type tags the closed set of consequence variants the engine can apply.
type Type string

const (
	TypeUpdateAttribute    Type = "UPDATE_ATTRIBUTE"
	TypeUpdateSkill        Type = "UPDATE_SKILL"
	TypeAddItem            Type = "ADD_ITEM"
	TypeRemoveItem         Type = "REMOVE_ITEM"
	TypeChangeRelationship Type = "CHANGE_RELATIONSHIP"
	TypeChangeLocation     Type = "CHANGE_LOCATION"
	TypeSetFlag            Type = "SET_FLAG"
	TypeTriggerEvent       Type = "TRIGGER_EVENT"
	TypeSendMessage        Type = "SEND_MESSAGE"
)

// Consequence is a single structured state-mutation instruction produced by
// judgement or by a scenario event outcome. It is immutable once created
// and opaque to the engine until matched to a handler by its type tag.
// Which fields are meaningful depends on Type:
//
//	UPDATE_ATTRIBUTE     TargetID, AttributeName, Value (numeric = delta, else replace)
//	UPDATE_SKILL         TargetID, SkillName, Value (numeric delta)
//	ADD_ITEM/REMOVE_ITEM TargetID, ItemID, Value (positive quantity)
//	CHANGE_RELATIONSHIP  TargetID, SecondaryID, Value (numeric delta)
//	CHANGE_LOCATION      TargetID, Value (destination location ID)
//	SET_FLAG             FlagName, Value (bool)
//	TRIGGER_EVENT        EventID, OutcomeID
//	SEND_MESSAGE         MessageContent, MessageRecipient
type Consequence struct {
	Type             Type   `json:"type"`
	TargetID         string `json:"target_entity_id,omitempty"`
	SecondaryID      string `json:"secondary_entity_id,omitempty"`
	AttributeName    string `json:"attribute_name,omitempty"`
	SkillName        string `json:"skill_name,omitempty"`
	ItemID           string `json:"item_id,omitempty"`
	EventID          string `json:"event_id,omitempty"`
	OutcomeID        string `json:"outcome_id,omitempty"`
	FlagName         string `json:"flag_name,omitempty"`
	Value            any    `json:"value,omitempty"`
	MessageContent   string `json:"message_content,omitempty"`
	MessageRecipient string `json:"message_recipient,omitempty"`
}

// details returns a loosely-typed copy of the consequence's raw fields for
// embedding in audit records.
func (c Consequence) details() map[string]any {
	d := map[string]any{"type": string(c.Type)}
	if c.TargetID != "" {
		d["target_entity_id"] = c.TargetID
	}
	if c.SecondaryID != "" {
		d["secondary_entity_id"] = c.SecondaryID
	}
	if c.AttributeName != "" {
		d["attribute_name"] = c.AttributeName
	}
	if c.SkillName != "" {
		d["skill_name"] = c.SkillName
	}
	if c.ItemID != "" {
		d["item_id"] = c.ItemID
	}
	if c.EventID != "" {
		d["event_id"] = c.EventID
	}
	if c.OutcomeID != "" {
		d["outcome_id"] = c.OutcomeID
	}
	if c.FlagName != "" {
		d["flag_name"] = c.FlagName
	}
	if c.Value != nil {
		d["value"] = c.Value
	}
	if c.MessageContent != "" {
		d["message_content"] = c.MessageContent
	}
	if c.MessageRecipient != "" {
		d["message_recipient"] = c.MessageRecipient
	}
	return d
}

// asNumber reports whether v carries a numeric value and returns it as a
// float64. JSON decoding produces float64, but consequences built in code
// commonly carry int.
func asNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}

// asString reports whether v is a string and returns it.
func asString(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}
