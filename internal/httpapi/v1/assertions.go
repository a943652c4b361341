package v1

import (
	"github.com/tallybook/tally/internal/coa"
	"github.com/tallybook/tally/internal/report"
	"github.com/tallybook/tally/internal/service/journal"
	"github.com/tallybook/tally/internal/storage/memory"
	"github.com/tallybook/tally/internal/storage/postgres"
)

// Compile-time checks that both stores satisfy every interface the server is
// wired with.
var (
	_ OrgReader             = (*memory.Store)(nil)
	_ coa.Repo              = (*memory.Store)(nil)
	_ coa.Writer            = (*memory.Store)(nil)
	_ coa.Loader            = (*memory.Store)(nil)
	_ journal.Repo          = (*memory.Store)(nil)
	_ journal.Writer        = (*memory.Store)(nil)
	_ report.ActivitySource = (*memory.Store)(nil)

	_ OrgReader             = (*postgres.Store)(nil)
	_ coa.Repo              = (*postgres.Store)(nil)
	_ coa.Writer            = (*postgres.Store)(nil)
	_ coa.Loader            = (*postgres.Store)(nil)
	_ journal.Repo          = (*postgres.Store)(nil)
	_ journal.Writer        = (*postgres.Store)(nil)
	_ report.ActivitySource = (*postgres.Store)(nil)
	_ ReadyChecker          = (*postgres.Store)(nil)
)
