package version

var (
	AppName        = "Nasty Client"
	AppFullName    = "Nasty Client Trainer"
	AppDescription = "Negotiation trainer bot: talk a difficult salon client into booking a massage, level by level."
	AppDevType     = "Go"
)
