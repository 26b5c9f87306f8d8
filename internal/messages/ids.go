package messages

// ID names one customizable message.
type ID string

const (
	CantBreakYet      ID = "CantBreakYet"
	AdminNotification ID = "AdminNotification"
	NoPermission      ID = "NoPermission"
	OnlyAsPlayer      ID = "OnlyAsPlayer"
	CommandHelpHeader ID = "CommandHelpHeader"
	CommandReloadCmd  ID = "CommandReloadCmd"
	CommandReloadDesc ID = "CommandReloadDesc"
	ReloadDone        ID = "ReloadDone"
	ReloadFailed      ID = "ReloadFailed"
	CommandCheckCmd   ID = "CommandCheckCmd"
	CommandCheckDesc  ID = "CommandCheckDesc"
	CurrentPoints     ID = "CurrentPoints"
	ReachedLimitCount ID = "ReachedLimitCount"
	NoPlayerDataFound ID = "NoPlayerDataFound"
	CommandSetCmd     ID = "CommandSetCmd"
	CommandSetDesc    ID = "CommandSetDesc"
	InvalidNumber     ID = "InvalidNumber"
	ChangesAreDone    ID = "ChangesAreDone"
	UnknownCommand    ID = "UnknownCommand"
	LookupFailed      ID = "LookupFailed"
)

type message struct {
	Text  string `yaml:"text"`
	Notes string `yaml:"notes,omitempty"`
}

// defaults are kept in display order; the file is written in this order too.
var defaults = []struct {
	id ID
	message
}{
	{CantBreakYet, message{
		Text:  "&eWow, you're good at mining!  You have to wait about {{ .Minutes }} {{ if eq .Minutes 1 }}minute{{ else }}minutes{{ end }} to break this block.  If you wait longer, you can mine even more of this.  Consider taking a break from mining to do something else, like building or exploring.  This mining speed limit keeps our ores safe from cheaters.  :)",
		Notes: "Minutes: minutes until the block can be broken, Count: how often the player has reached the limit",
	}},
	{AdminNotification, message{
		Text:  "&e{{ .Player | default \"Someone\" }} reached the mining speed limit. They already reached it about {{ .Count }} times.",
		Notes: "Player: player name, Count: how often the player has reached the limit",
	}},
	{NoPermission, message{Text: "&cYou have no permission for that."}},
	{OnlyAsPlayer, message{Text: "&cThis command can only be executed as a player."}},
	{CommandHelpHeader, message{Text: "&2--- &4AntiXRay &2---"}},
	{CommandReloadCmd, message{Text: "&e/antixray reload"}},
	{CommandReloadDesc, message{Text: "&9     - Reloads the configuration and messages."}},
	{ReloadDone, message{Text: "&aAntiXRay was reloaded. Check the log if there were any errors."}},
	{ReloadFailed, message{
		Text:  "&cReloading failed, the previous settings are still active: {{ .Error }}",
		Notes: "Error: what went wrong",
	}},
	{CommandCheckCmd, message{Text: "&e/antixray check [player]"}},
	{CommandCheckDesc, message{Text: "&9     - Shows you your or another players current points."}},
	{CurrentPoints, message{
		Text:  "&e{{ .Player }} currently has {{ .Points }} points.",
		Notes: "Player: player name, Points: the players points",
	}},
	{ReachedLimitCount, message{
		Text:  "&e{{ .Player }} has reached the limit {{ .Count }} times.",
		Notes: "Player: player name, Count: how often the player has reached the limit",
	}},
	{NoPlayerDataFound, message{
		Text:  "&eNo player data was found for '{{ .Player }}'.",
		Notes: "Player: player name",
	}},
	{CommandSetCmd, message{Text: "&e/antixray set <player> <points|counter> <value>"}},
	{CommandSetDesc, message{Text: "&9     - Sets the players points or counter value."}},
	{InvalidNumber, message{
		Text:  "&c'{{ .Value }}' is not a valid number.",
		Notes: "Value: the invalid argument",
	}},
	{ChangesAreDone, message{Text: "&aChanges were successfully made."}},
	{UnknownCommand, message{
		Text:  "&cUnknown command '{{ .Command }}'. Try /antixray help.",
		Notes: "Command: the unknown sub command",
	}},
	{LookupFailed, message{
		Text:  "&cCould not look up '{{ .Player }}' right now, try again later.",
		Notes: "Player: player name",
	}},
}
