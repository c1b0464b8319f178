package scheduler

import (
	"context"

	"github.com/yesoreyeram/thaiyyal/backend/pkg/config"
	"github.com/yesoreyeram/thaiyyal/backend/pkg/execctx"
	"github.com/yesoreyeram/thaiyyal/backend/pkg/executor"
	"github.com/yesoreyeram/thaiyyal/backend/pkg/logging"
	"github.com/yesoreyeram/thaiyyal/backend/pkg/types"
)

// runContext adapts execctx.Context plus the run's fixed collaborators to
// the full executor.ExecutionContext surface, so leaf node executors never
// import the scheduler, plugin registry, reference executor, or
// notification dispatcher directly.
type runContext struct {
	*execctx.Context
	cfg           config.Config
	logger        *logging.Logger
	plugins       executor.PluginRegistry
	references    executor.ReferenceInvoker
	notifications executor.NotificationDispatcher
	ctx           context.Context
}

func (r *runContext) Config() types.Config                        { return r.cfg }
func (r *runContext) Logger() *logging.Logger                     { return r.logger }
func (r *runContext) Plugins() executor.PluginRegistry             { return r.plugins }
func (r *runContext) References() executor.ReferenceInvoker         { return r.references }
func (r *runContext) Notifications() executor.NotificationDispatcher { return r.notifications }
func (r *runContext) Context() context.Context                     { return r.ctx }

var _ executor.ExecutionContext = (*runContext)(nil)
