package reorder

import "github.com/henri123lemoine/grain/internal/git"

// Plan edits are history commands over the shared plan slice. They cannot
// fail.

type swapCmd struct {
	plan []Entry
	i, j int
}

func (c *swapCmd) Execute() error {
	c.plan[c.i], c.plan[c.j] = c.plan[c.j], c.plan[c.i]
	return nil
}

func (c *swapCmd) Undo() error { return c.Execute() }

func (c *swapCmd) Description() string { return "swap" }

type intentCmd struct {
	plan     []Entry
	i        int
	from, to git.Intent
}

func (c *intentCmd) Execute() error {
	c.plan[c.i].Intent = c.to
	return nil
}

func (c *intentCmd) Undo() error {
	c.plan[c.i].Intent = c.from
	return nil
}

func (c *intentCmd) Description() string { return c.to.String() }

type messageCmd struct {
	plan     []Entry
	i        int
	from, to string
}

func (c *messageCmd) Execute() error {
	c.plan[c.i].Message = c.to
	return nil
}

func (c *messageCmd) Undo() error {
	c.plan[c.i].Message = c.from
	return nil
}

func (c *messageCmd) Description() string { return "reword" }
