package cmd

import (
	"context"
	"flag"

	"github.com/etnz/etfwatch/docs"
	"github.com/google/subcommands"
)

type topicCmd struct{}

func (*topicCmd) Name() string     { return "topic" }
func (*topicCmd) Synopsis() string { return "print help topics" }
func (*topicCmd) Usage() string {
	return `etfw topic [<topic>...]

  Prints the given help topics, "*" for all of them. Without a topic,
  prints the list of topics.
`
}

func (c *topicCmd) SetFlags(f *flag.FlagSet) {}

func (c *topicCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	topics := f.Args()
	if len(topics) == 0 {
		topics = []string{"readme"}
	}

	doc, err := docs.GetTopics(topics...)
	if err != nil {
		return fail("%v", err)
	}
	printMarkdown(doc)
	return subcommands.ExitSuccess
}
