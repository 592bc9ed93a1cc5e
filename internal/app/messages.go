package app

import "github.com/dis-cadets/srt-bot/internal/attendance"

// Callback data carried by inline buttons.
const (
	ActBook     = "srt:book"
	ActCheckIn  = "srt:checkin"
	ActCheckOut = "srt:checkout"
	ActDetails  = "srt:details"
	ActMenu     = "srt:menu"
	ActClosed   = "srt:closed"

	actActivityPrefix = "srt:activity:"
)

const (
	MsgAskName       = "Welcome to the DIS SRT Bot! Please enter your full name:"
	MsgNameTaken     = "That name is already registered. Please enter a different full name:"
	MsgNameEmpty     = "Please enter your full name:"
	MsgRegistered    = "Thank you! Redirecting to the main menu..."
	MsgMenu          = "What would you like to do?"
	MsgClosed        = "SRT bookings closed."
	MsgPickActivity  = "What activity would you like to do?"
	MsgNoActivities  = "No activities found in the database."
	MsgBooked        = "SRT booking submitted."
	MsgCheckedIn     = "You have commenced your SRT."
	MsgCheckedOut    = "You have ended your SRT."
	MsgNoRecord      = "No SRT booked yet."
	MsgStale         = "That option is no longer available."
	MsgUnknownAction = "Unknown option."
	MsgActivityGone  = "That activity is no longer available."
	MsgTryAgain      = "Something went wrong. Please try again."
	MsgAdminOnly     = "This command is for administrators."
	MsgEmptyExport   = "There are no attendance records to export."
)

const (
	LabelBook     = "Book SRT Slot"
	LabelCheckIn  = "Check In SRT"
	LabelCheckOut = "Check Out SRT"
	LabelDetails  = "View SRT Details"
	LabelMenu     = "Back to Main Menu"
	LabelClosed   = "Closed"
)

func welcome(name string) string { return "Welcome, " + name + "!" }

func actionButton(a attendance.Action) Button {
	switch a {
	case attendance.ActionCheckIn:
		return Button{Label: LabelCheckIn, Action: ActCheckIn}
	case attendance.ActionCheckOut:
		return Button{Label: LabelCheckOut, Action: ActCheckOut}
	case attendance.ActionClosed:
		return Button{Label: LabelClosed, Action: ActClosed}
	case attendance.ActionViewDetails:
		return Button{Label: LabelDetails, Action: ActDetails}
	default:
		return Button{Label: LabelBook, Action: ActBook}
	}
}
