package workflow

import (
	"context"
	"time"

	"github.com/mohitkumar/workflower/logger"
	"go.uber.org/zap"
)

// walk drains the token queue. A branch halts at a manual activity, at an end
// event, at a parallel join still waiting for arrivals, or at a node with no
// outgoing flows. On error the failing token stays at the head of the queue,
// except for automated activities whose started work item marks the position.
func (pi *ProcessInstance) walk(ctx context.Context) error {
	steps := 0
	for len(pi.tokens) > 0 {
		id := pi.tokens[0]
		if steps >= pi.walkLimit {
			return WalkLimitError{Limit: pi.walkLimit, At: id}
		}
		steps++
		fo, ok := pi.graph.FlowObject(id)
		if !ok {
			return FlowObjectNotFoundError{Id: id}
		}
		switch node := fo.(type) {
		case *Activity:
			pi.tokens = pi.tokens[1:]
			pi.currentFlowObject = node
			if err := pi.enterActivity(ctx, node); err != nil {
				return err
			}
		case *EndEvent:
			pi.tokens = pi.tokens[1:]
			pi.currentFlowObject = node
			pi.endReached = true
			logger.Debug("end event reached", zap.String("processId", pi.id), zap.String("event", node.GetId()))
		case *Gateway:
			if err := pi.enterGateway(node); err != nil {
				return err
			}
		default:
			targets, err := pi.selectTargets(node)
			if err != nil {
				return err
			}
			pi.tokens = append(pi.tokens[1:], targets...)
			pi.currentFlowObject = node
		}
	}
	pi.completeIfDone()
	return nil
}

func (pi *ProcessInstance) enterGateway(gw *Gateway) error {
	if gw.GetGatewayType() == GATEWAY_PARALLEL {
		incoming := len(pi.graph.Incoming(gw.GetId()))
		if incoming > 1 {
			pi.joins[gw.GetId()]++
			if pi.joins[gw.GetId()] < incoming {
				pi.tokens = pi.tokens[1:]
				return nil
			}
			delete(pi.joins, gw.GetId())
		}
	}
	targets, err := pi.selectTargets(gw)
	if err != nil {
		return err
	}
	pi.tokens = append(pi.tokens[1:], targets...)
	pi.currentFlowObject = gw
	return nil
}

func (pi *ProcessInstance) enterActivity(ctx context.Context, act *Activity) error {
	item := act.createWorkItem()
	if !act.IsAutomated() {
		logger.Debug("work item created", zap.String("processId", pi.id), zap.String("activity", act.GetId()), zap.String("workItem", item.Id))
		return nil
	}
	if err := item.Allocate(SystemParticipant); err != nil {
		return err
	}
	if err := item.Start(SystemParticipant); err != nil {
		return err
	}
	return pi.finishAutomated(ctx, act, item)
}

// finishAutomated runs the operation of act and completes item. A failed
// operation leaves item STARTED so completing it again retries the operation.
func (pi *ProcessInstance) finishAutomated(ctx context.Context, act *Activity, item *WorkItem) error {
	if pi.operationRunner == nil {
		return ErrOperationRunnerNotSet
	}
	output, err := pi.operationRunner.Run(ctx, act, copyData(pi.processData))
	if err != nil {
		logger.Error("operation failed", zap.String("processId", pi.id), zap.String("activity", act.GetId()), zap.String("operation", act.GetOperation()), zap.Error(err))
		return err
	}
	for k, v := range output {
		pi.processData[k] = v
	}
	targets, err := pi.selectTargets(act)
	if err != nil {
		return err
	}
	if err := item.Complete(SystemParticipant); err != nil {
		return err
	}
	pi.tokens = append(pi.tokens, targets...)
	return nil
}

// selectTargets returns the targets of the outgoing flows fo leaves through.
// An exclusive gateway takes the first flow whose guard holds, falling back to
// its default flow. Any other node takes every flow whose guard holds, or the
// default flow when none does.
func (pi *ProcessInstance) selectTargets(fo FlowObject) ([]string, error) {
	flows := pi.graph.Outgoing(fo.GetId())
	if len(flows) == 0 {
		return nil, nil
	}
	gw, isGateway := fo.(*Gateway)
	if isGateway && gw.GetGatewayType() == GATEWAY_PARALLEL {
		targets := make([]string, 0, len(flows))
		for _, sf := range flows {
			targets = append(targets, sf.Target)
		}
		return targets, nil
	}
	exclusive := isGateway && gw.GetGatewayType() == GATEWAY_EXCLUSIVE
	var targets []string
	var def *SequenceFlow
	for _, sf := range flows {
		if sf.Default {
			if def == nil {
				def = sf
			}
			continue
		}
		ok, err := pi.guard(sf)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		targets = append(targets, sf.Target)
		if exclusive {
			return targets, nil
		}
	}
	if len(targets) > 0 {
		return targets, nil
	}
	if def != nil {
		return []string{def.Target}, nil
	}
	if exclusive {
		return nil, ErrNoOutgoingFlowSelected
	}
	return nil, nil
}

func (pi *ProcessInstance) guard(sf *SequenceFlow) (bool, error) {
	if !sf.IsConditional() {
		return true, nil
	}
	if pi.expressionEvaluator == nil {
		return false, ErrExpressionEvaluatorNotSet
	}
	v, err := pi.expressionEvaluator.Evaluate(sf.Condition, copyData(pi.processData))
	if err != nil {
		return false, err
	}
	return Truthy(v), nil
}

func (pi *ProcessInstance) completeIfDone() {
	if pi.state != INSTANCE_STARTED || !pi.endReached || len(pi.tokens) > 0 {
		return
	}
	for _, act := range pi.graph.Activities() {
		if len(act.workItems.ActiveInstances()) > 0 {
			return
		}
	}
	now := time.Now()
	pi.state = INSTANCE_COMPLETED
	pi.completedAt = &now
	logger.Info("process instance completed", zap.String("processId", pi.id), zap.String("workflow", pi.graph.GetName()))
}
