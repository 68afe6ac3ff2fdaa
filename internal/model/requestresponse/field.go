package requestresponse

import "esign-web-server/internal/model"

// PlaceFieldRequest : координаты в единицах страницы от левого верхнего угла
type PlaceFieldRequest struct {
	PageNumber    int     `json:"page_number" example:"1"`
	X             float64 `json:"x" example:"150"`
	Y             float64 `json:"y" example:"650"`
	Width         float64 `json:"width" example:"200"`
	Height        float64 `json:"height" example:"60"`
	Type          string  `json:"field_type,omitempty" example:"signature" enums:"signature,text,date,name,email,phone,custom"`
	Label         string  `json:"label,omitempty" example:"Signature"`
	Required      bool    `json:"required" example:"true"`
	RecipientUUID *string `json:"recipient_uuid,omitempty" example:"b6a1e1c4-4b1d-4f1e-8b29-1234567890ab"`
}

func (r PlaceFieldRequest) Input() model.NewField {
	return model.NewField{
		PageNumber:   r.PageNumber,
		X:            r.X,
		Y:            r.Y,
		Width:        r.Width,
		Height:       r.Height,
		Type:         model.FieldType(r.Type),
		Label:        r.Label,
		Required:     r.Required,
		AssigneeUUID: r.RecipientUUID,
	}
}

// MoveFieldRequest : перетаскивание поля
type MoveFieldRequest struct {
	X *float64 `json:"x" example:"120"`
	Y *float64 `json:"y" example:"340"`
}

// UpdateFieldRequest : unassign=true снимает назначение с поля
type UpdateFieldRequest struct {
	PageNumber    *int     `json:"page_number,omitempty"`
	X             *float64 `json:"x,omitempty"`
	Y             *float64 `json:"y,omitempty"`
	Width         *float64 `json:"width,omitempty"`
	Height        *float64 `json:"height,omitempty"`
	Type          *string  `json:"field_type,omitempty"`
	Label         *string  `json:"label,omitempty"`
	Required      *bool    `json:"required,omitempty"`
	RecipientUUID *string  `json:"recipient_uuid,omitempty"`
	Unassign      bool     `json:"unassign,omitempty"`
}

func (r UpdateFieldRequest) Patch() model.FieldPatch {
	patch := model.FieldPatch{
		PageNumber:   r.PageNumber,
		X:            r.X,
		Y:            r.Y,
		Width:        r.Width,
		Height:       r.Height,
		Label:        r.Label,
		Required:     r.Required,
		AssigneeUUID: r.RecipientUUID,
		Unassign:     r.Unassign,
	}
	if r.Type != nil {
		fieldType := model.FieldType(*r.Type)
		patch.Type = &fieldType
	}
	return patch
}

type FieldResponse struct {
	Data *model.SignatureField `json:"data"`
}

type FieldsResponse struct {
	Data []model.SignatureField `json:"data"`
}
