package model

// ResourceKind : тип ресурса, права на который выводятся из владельца документа
type ResourceKind string

const (
	ResourceDocument  ResourceKind = "document"
	ResourceRecipient ResourceKind = "recipient"
	ResourceField     ResourceKind = "field"
)
