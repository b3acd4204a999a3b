package domain

// Classification is the terminal outcome of the message classifier. Every
// message gets exactly one; no classifier step raises.
type Classification string

const (
	ClassOffer   Classification = "offer"
	ClassRequest Classification = "request"
	ClassIgnored Classification = "ignored"
)

// Skip reasons reported in the webhook acknowledgement and audit detail.
const (
	ReasonNotGroup        = "not_group"
	ReasonStatusBroadcast = "status_broadcast"
	ReasonNoise           = "noise"
	ReasonNotWhitelisted  = "not_whitelisted"
	ReasonNonText         = "non_text"
	ReasonDuplicate       = "duplicate"
	ReasonUnknownShape    = "unknown_shape"
	ReasonNoRecords       = "no_records"
)
