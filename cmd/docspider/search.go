package main

import (
	"fmt"

	"github.com/mliang/docspider"
)

// Run executes the search command.
func (c *SearchCmd) Run(deps *Dependencies) error {
	opts := docspider.SearchOptions{
		Offset: c.Offset,
		Limit:  c.Limit,
		Filter: c.Filter,
		Sort:   c.Sort,
	}

	if c.Articles {
		result, err := deps.Articles.SearchArticles(deps.Ctx, c.Query, opts)
		if err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", docspider.ErrorMessage(err))
			return err
		}
		fmt.Fprintf(deps.Stdout, "%d hits\n", result.EstimatedHits)
		for _, a := range result.Hits {
			fmt.Fprintf(deps.Stdout, "%d\t%s\t%s\n", a.ID, a.Title, a.URL)
		}
		return nil
	}

	result, err := deps.Documents.SearchDocuments(deps.Ctx, c.Query, opts)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", docspider.ErrorMessage(err))
		return err
	}
	fmt.Fprintf(deps.Stdout, "%d hits\n", result.EstimatedHits)
	for _, d := range result.Hits {
		fmt.Fprintf(deps.Stdout, "%s\t%s\n", d.Title, d.URL)
	}
	return nil
}
