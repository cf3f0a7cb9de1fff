package thumbwar

import (
	"context"
	"errors"

	"github.com/toejough/imprun"
)

// Suite registers the fundamentals and thumb-war cases. The three thumb-war cases
// share a name, so the runner must allow duplicates.
func Suite(runner *imprun.Runner, registry *imprun.Registry) error {
	const (
		player1 = "Diego Villa"
		player2 = "Adolfo Jose"
	)

	p1Wins := func(p1, _ string) string { return p1 }

	return errors.Join(
		runner.Register("sum adds numbers", func(context.Context) error {
			return imprun.Expect(Sum(3, 7)).ToBe(10)
		}),
		runner.Register("subtract subtracts numbers", func(context.Context) error {
			return imprun.Expect(Subtract(7, 3)).ToBe(4)
		}),
		runner.Register("the thumbWar function", func(context.Context) error {
			getWinner := imprun.WrapFunc(p1Wins, imprun.WithName("getWinner"))
			if err := imprun.SubstituteMock(registry, &GetWinner, getWinner); err != nil {
				return err
			}

			defer func() { _ = registry.Restore(&GetWinner) }()

			return imprun.Assert(
				imprun.Expect(ThumbWar(player1, player2)).ToBe(player1),
				imprun.Expect(getWinner).ToHaveBeenCalledTimes(2),
				imprun.Expect(getWinner).ToHaveBeenCalledWith(player1, player2),
				imprun.Expect(getWinner).ToHaveBeenNthCalledWith(1, player1, player2),
				imprun.Expect(getWinner).ToHaveBeenNthCalledWith(2, player1, player2),
			)
		}),
		runner.Register("the thumbWar function", func(context.Context) error {
			getWinner := imprun.WrapFunc(p1Wins, imprun.WithName("getWinner"))
			imprun.Must(imprun.SubstituteMock(registry, &GetWinner, getWinner))

			imprun.Must(imprun.Expect(ThumbWar(player1, player2)).ToBe(player1))

			return imprun.Expect(getWinner.Calls()).ToEqual([][]any{
				{player1, player2},
				{player1, player2},
			})
		}),
		runner.Register("the thumbWar function", func(context.Context) error {
			getWinner := imprun.NewMock[func(string, string) string](imprun.WithName("getWinner"))
			getWinner.SetImplementation(p1Wins)
			imprun.Must(imprun.SubstituteMock(registry, &GetWinner, getWinner))

			err := imprun.Assert(
				imprun.Expect(ThumbWar(player1, player2)).ToBe(player1),
				imprun.Expect(getWinner.Calls()).ToEqual([][]any{
					{player1, player2},
					{player1, player2},
				}),
			)

			getWinner.Reset()

			return err
		}),
	)
}
