package swap

type State string

const (
	Quoting             State = "QUOTING"
	Confirming          State = "CONFIRMING"
	CheckingBalance     State = "CHECKING_BALANCE"
	CheckingAllowance   State = "CHECKING_ALLOWANCE"
	IncreasingAllowance State = "INCREASING_ALLOWANCE"
	BuildingTx          State = "BUILDING_TX"
	Submitting          State = "SUBMITTING"
	Done                State = "DONE"
	Failed              State = "FAILED"
	Aborted             State = "ABORTED"
)

func (s State) Terminal() bool {
	return s == Done || s == Failed || s == Aborted
}
