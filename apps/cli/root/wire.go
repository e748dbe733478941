package root

import (
	"github.com/conductor-saas/conductor/apps/cli/cmd/bootstrap"
	tenantcmd "github.com/conductor-saas/conductor/apps/cli/cmd/tenant"
)

func init() {
	Root().AddCommand(bootstrap.Command())
	Root().AddCommand(tenantcmd.Command())
}
