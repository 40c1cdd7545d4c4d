package warehouse

import (
	"strconv"
	"strings"
)

// Step is the conversation position. The flow is linear:
// menu → select_date → select_time → enter_phone → enter_company →
// select_vehicle → enter_cargo → submit → menu.
type Step int

const (
	StepMenu Step = iota
	StepSelectDate
	StepSelectTime
	StepEnterPhone
	StepEnterCompany
	StepSelectVehicle
	StepEnterCargo
)

// InputKind is the semantic event behind a pressed button or typed message.
// Transitions key off kinds, not display text, so labels can change without
// touching the state machine.
type InputKind int

const (
	InputStartBooking InputKind = iota
	InputMyBookings
	InputInfo
	InputCancel
	InputCancelBooking
	InputText
)

type Input struct {
	Kind InputKind
	Text string
	// Index is the 0-based booking position for InputCancelBooking.
	Index int
}

// Button labels as the chat renders them. ParseInput is the only place that
// looks at them.
const (
	labelStartBooking = "📅 Забронировать время"
	labelBookAgain    = "📅 Забронировать ещё"
	labelMyBookings   = "📋 Мои бронирования"
	labelInfo         = "ℹ️ Информация"
	labelCancel       = "❌ Отмена"
	labelBack         = "🔙 Назад"
	labelCancelPrefix = "❌ Отменить #"
)

// ParseInput decodes a button label or free-text message into a semantic
// input. Anything unrecognized is free text for the current step.
func ParseInput(text string) Input {
	switch text {
	case labelStartBooking, labelBookAgain:
		return Input{Kind: InputStartBooking}
	case labelMyBookings:
		return Input{Kind: InputMyBookings}
	case labelInfo:
		return Input{Kind: InputInfo}
	case labelCancel, labelBack:
		return Input{Kind: InputCancel}
	}
	if rest, ok := strings.CutPrefix(text, labelCancelPrefix); ok {
		n, err := strconv.Atoi(rest)
		if err != nil || n < 1 {
			return Input{Kind: InputText, Text: text}
		}
		return Input{Kind: InputCancelBooking, Index: n - 1}
	}
	return Input{Kind: InputText, Text: text}
}

// State is the whole conversation state: the step plus the booking form
// filled so far.
type State struct {
	Step      Step
	DateLabel string
	// Date is the resolved yyyy-mm-dd form of DateLabel, filled in once the
	// slot fetch succeeds.
	Date    string
	Time    string
	Phone   string
	Company string
	Vehicle string
	Cargo   string
}

// EffectKind names a side effect the transition requests. Pure prompts only
// produce a reply; Fetch/Submit/List/Cancel effects hit the booking API and
// may move the state again based on the outcome.
type EffectKind int

const (
	EffectShowMenu EffectKind = iota
	EffectShowDates
	EffectShowInfo
	EffectFetchSlots
	EffectPromptPhone
	EffectPromptCompany
	EffectPromptVehicle
	EffectPromptCargo
	EffectSubmitBooking
	EffectListBookings
	EffectCancelBooking
)

type Effect struct {
	Kind  EffectKind
	Index int
}

// Transition applies one input and returns the next state plus the effects
// to run. It is pure: date/slot availability and booking outcomes are
// resolved by whoever executes the effects.
func Transition(state State, input Input) (State, []Effect) {
	// Global escapes work from any step.
	switch input.Kind {
	case InputCancel:
		return State{Step: StepMenu}, []Effect{{Kind: EffectShowMenu}}
	case InputStartBooking:
		return State{Step: StepSelectDate}, []Effect{{Kind: EffectShowDates}}
	case InputMyBookings:
		state.Step = StepMenu
		return state, []Effect{{Kind: EffectListBookings}}
	case InputInfo:
		state.Step = StepMenu
		return state, []Effect{{Kind: EffectShowInfo}}
	case InputCancelBooking:
		state.Step = StepMenu
		return state, []Effect{{Kind: EffectCancelBooking, Index: input.Index}}
	}

	switch state.Step {
	case StepSelectDate:
		state.DateLabel = input.Text
		state.Step = StepSelectTime
		return state, []Effect{{Kind: EffectFetchSlots}}
	case StepSelectTime:
		state.Time = input.Text
		state.Step = StepEnterPhone
		return state, []Effect{{Kind: EffectPromptPhone}}
	case StepEnterPhone:
		state.Phone = input.Text
		state.Step = StepEnterCompany
		return state, []Effect{{Kind: EffectPromptCompany}}
	case StepEnterCompany:
		state.Company = input.Text
		state.Step = StepSelectVehicle
		return state, []Effect{{Kind: EffectPromptVehicle}}
	case StepSelectVehicle:
		state.Vehicle = input.Text
		state.Step = StepEnterCargo
		return state, []Effect{{Kind: EffectPromptCargo}}
	case StepEnterCargo:
		if input.Text == "-" {
			state.Cargo = ""
		} else {
			state.Cargo = input.Text
		}
		state.Step = StepMenu
		return state, []Effect{{Kind: EffectSubmitBooking}}
	}

	// Free text at the menu just re-shows the menu.
	return state, []Effect{{Kind: EffectShowMenu}}
}
