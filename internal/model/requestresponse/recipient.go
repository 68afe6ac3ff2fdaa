package requestresponse

import "esign-web-server/internal/model"

type RecipientInput struct {
	Email string `json:"email" example:"jane@example.com"`
	Name  string `json:"name" example:"Jane Doe"`
	Role  string `json:"role,omitempty" example:"signer" enums:"signer,viewer,approver"`
}

// AddRecipientsRequest : подписанты добавляются списком
type AddRecipientsRequest struct {
	Recipients []RecipientInput `json:"recipients"`
}

func (r AddRecipientsRequest) Inputs() []model.NewRecipient {
	inputs := make([]model.NewRecipient, 0, len(r.Recipients))
	for _, recipient := range r.Recipients {
		inputs = append(inputs, model.NewRecipient{
			Email: recipient.Email,
			Name:  recipient.Name,
			Role:  model.RecipientRole(recipient.Role),
		})
	}
	return inputs
}

type UpdateRecipientRequest struct {
	Email *string `json:"email,omitempty" example:"jane.doe@example.com"`
	Name  *string `json:"name,omitempty" example:"Jane Doe"`
	Role  *string `json:"role,omitempty" example:"approver"`
}

func (r UpdateRecipientRequest) Patch() model.RecipientPatch {
	patch := model.RecipientPatch{Email: r.Email, Name: r.Name}
	if r.Role != nil {
		role := model.RecipientRole(*r.Role)
		patch.Role = &role
	}
	return patch
}

// RecipientView : владелец видит ссылку подписанта, чтобы переслать её вручную
type RecipientView struct {
	model.Recipient
	SigningURL string `json:"signing_url" example:"https://sign.example.com/sign/{document}/{token}"`
}

type RecipientsResponse struct {
	Data []RecipientView `json:"data"`
}

type RecipientResponse struct {
	Data RecipientView `json:"data"`
}
