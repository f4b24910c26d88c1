package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"math/big"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"

	"github.com/you/chamber/internal/aggregator"
	"github.com/you/chamber/internal/swap"
	"github.com/you/chamber/internal/tokens"
	"github.com/you/chamber/internal/types"
)

var errNotInteractive = errors.New("stdin is not a terminal; answer prompts interactively or pass -yes")

// prompter asks the operator on the terminal.
type prompter struct {
	in          *bufio.Reader
	out         io.Writer
	assumeYes   bool
	interactive bool
}

func newPrompter(in io.Reader, out io.Writer, assumeYes bool) *prompter {
	return &prompter{
		in:          bufio.NewReader(in),
		out:         out,
		assumeYes:   assumeYes,
		interactive: isTerminal(in),
	}
}

func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func (p *prompter) ConfirmQuote(_ context.Context, best types.Quote, res *aggregator.Result) (bool, error) {
	printQuotes(p.out, res)
	fmt.Fprintf(p.out, "\nbest: %s %s via %s\n",
		tokens.FormatUnits(best.ExpectedOutput, best.BuyToken.Decimals), best.BuyToken.Symbol, best.Source)
	if p.assumeYes {
		return true, nil
	}
	ans, err := p.ask("proceed with swap? [y/N]: ")
	if err != nil {
		return false, err
	}
	switch strings.ToLower(ans) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}

// ChooseAllowance always asks; -yes never approves spending on its own.
func (p *prompter) ChooseAllowance(_ context.Context, token types.Token, current, required *big.Int, menu []swap.AllowanceOption) (swap.AllowanceOption, error) {
	fmt.Fprintf(p.out, "\n%s allowance is %s, the swap needs %s. Increase to:\n",
		token.Symbol, tokens.FormatUnits(current, token.Decimals), tokens.FormatUnits(required, token.Decimals))
	for i, o := range menu {
		fmt.Fprintf(p.out, "  %d) %s\n", i, o.Label)
	}
	ans, err := p.ask("choice: ")
	if err != nil {
		return swap.AllowanceOption{}, err
	}
	n, err := strconv.Atoi(ans)
	if err != nil || n < 0 || n >= len(menu) {
		return swap.AllowanceOption{}, fmt.Errorf("%w: invalid choice %q", types.ErrAllowanceIncreaseFailed, ans)
	}
	return menu[n], nil
}

func (p *prompter) ask(q string) (string, error) {
	fmt.Fprint(p.out, q)
	line, err := p.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		if errors.Is(err, io.EOF) && !p.interactive {
			return "", errNotInteractive
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}
