package game

import (
	"context"
	"time"

	"github.com/kiryu-dev/ultimate-tic-tac-toe/internal/domain"
	"github.com/kiryu-dev/ultimate-tic-tac-toe/pkg/utils"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

type useCase struct {
	cache  domain.ScoreCache
	clock  domain.Clock
	budget time.Duration
	logger *zap.Logger
}

func New(cache domain.ScoreCache, clock domain.Clock, budget time.Duration, logger *zap.Logger) useCase {
	return useCase{
		cache:  cache,
		clock:  clock,
		budget: budget,
		logger: logger,
	}
}

// Play serves one connection of a session until the client goes away.
// Rejected requests are answered with a failure message and the loop goes on.
func (u useCase) Play(ctx context.Context, client domain.Client, session *domain.Session) error {
	if err := u.reply(ctx, session); err != nil {
		return errors.WithMessage(err, "engine reply")
	}
	session.Touch(u.clock.Now())
	if err := sendState(client, session); err != nil {
		return errors.WithMessage(err, "send initial state")
	}
	for {
		msg, err := client.ReadMessage()
		switch {
		case errors.Is(err, domain.ErrConnectionClosed):
			return nil
		case err != nil:
			return errors.WithMessage(err, "read message from client")
		}
		opts, err := u.handle(ctx, session, msg)
		session.Touch(u.clock.Now())
		switch {
		case isRejection(err):
			u.logger.Debug("request rejected",
				zap.String("session", session.ID),
				zap.Error(err),
			)
			if err := sendFailure(client, err); err != nil {
				return errors.WithMessage(err, "send failure")
			}
			continue
		case err != nil:
			return errors.WithMessage(err, "handle message")
		}
		if err := sendState(client, session, opts...); err != nil {
			return errors.WithMessage(err, "send state")
		}
		if session.State.Finished() {
			u.logger.Info("game finished",
				zap.String("session", session.ID),
				zap.Stringer("result", session.State.Result),
				zap.Int("plies", session.State.Plies),
			)
		}
	}
}

func (u useCase) handle(ctx context.Context, session *domain.Session,
	msg domain.Message) ([]domain.StatePayloadOption, error) {
	switch msg.Type {
	case domain.StartGame:
		payload, err := utils.UnmarshalJson[domain.StartGamePayload](msg.Payload)
		if err != nil {
			return nil, errors.WithMessage(errMalformedPayload, err.Error())
		}
		return nil, u.newGame(ctx, session, payload.HumanSide)
	case domain.PlayerMove:
		payload, err := utils.UnmarshalJson[domain.PlayerMovePayload](msg.Payload)
		if err != nil {
			return nil, errors.WithMessage(errMalformedPayload, err.Error())
		}
		return nil, u.playerMove(ctx, session, domain.Coord{Row: payload.Row, Col: payload.Col})
	case domain.Evaluate:
		return u.evaluate(ctx, session)
	case domain.PlayBest:
		return nil, u.playBest(ctx, session)
	default:
		return nil, errors.WithMessagef(domain.ErrUnexpectedMessage, "type %d", msg.Type)
	}
}

func (u useCase) newGame(ctx context.Context, session *domain.Session, human domain.Player) error {
	if human != domain.Empty && !human.IsSide() {
		return errors.WithMessagef(domain.ErrInvalidPlayer, "cannot play as '%s'", human)
	}
	session.Human = human
	session.State = domain.NewGameState(domain.Mine)
	return u.reply(ctx, session)
}

func (u useCase) playerMove(ctx context.Context, session *domain.Session, move domain.Coord) error {
	if engineTurn(session) {
		return errNotYourTurn
	}
	state, err := session.State.Apply(move)
	if err != nil {
		return err
	}
	session.State = state
	return u.reply(ctx, session)
}

// evaluate samples every legal move and adds the scores to whatever the
// position has accumulated so far.
func (u useCase) evaluate(ctx context.Context, session *domain.Session) ([]domain.StatePayloadOption, error) {
	state := session.State
	if state.Finished() {
		return nil, domain.ErrGameFinished
	}
	ev, err := session.Engine.Evaluate(ctx, state.Board, state.Last, state.Turn, u.budget)
	if err != nil {
		return nil, errors.WithMessage(err, "evaluate position")
	}
	total, err := u.cache.Add(ctx, domain.CacheKey(state.Board, state.Last), ev.Scores)
	if err != nil {
		return nil, errors.WithMessage(err, "accumulate scores")
	}
	u.logger.Debug("position evaluated",
		zap.String("session", session.ID),
		zap.Int("rollouts", ev.Rollouts),
		zap.Int("winning", len(ev.Winning)),
		zap.Int("losing", len(ev.Losing)),
	)
	return []domain.StatePayloadOption{
		domain.WithScores(total),
		domain.WithHints(ev.Winning, ev.Losing),
	}, nil
}

// playBest moves for the side to move, preferring scores accumulated by
// earlier evaluations over a fresh search.
func (u useCase) playBest(ctx context.Context, session *domain.Session) error {
	if engineTurn(session) {
		return errNotYourTurn
	}
	state := session.State
	if state.Finished() {
		return domain.ErrGameFinished
	}
	scores, err := u.cache.Load(ctx, domain.CacheKey(state.Board, state.Last))
	if err != nil {
		return errors.WithMessage(err, "load scores")
	}
	var decision domain.Decision
	if len(scores) > 0 {
		decision, err = session.Engine.Select(state.Board, state.Last, state.Turn, scores)
	} else {
		decision, err = session.Engine.BestMove(ctx, state.Board, state.Last, state.Turn, u.budget)
	}
	if err != nil {
		return errors.WithMessage(err, "choose move")
	}
	if session.State, err = state.Apply(decision.Move); err != nil {
		return errors.WithMessage(err, "apply best move")
	}
	return u.reply(ctx, session)
}

// reply lets the engine move while it is its turn.
func (u useCase) reply(ctx context.Context, session *domain.Session) error {
	if !engineTurn(session) {
		return nil
	}
	state := session.State
	decision, err := session.Engine.BestMove(ctx, state.Board, state.Last, state.Turn, u.budget)
	if err != nil {
		return errors.WithMessage(err, "search engine move")
	}
	if session.State, err = state.Apply(decision.Move); err != nil {
		return errors.WithMessage(err, "apply engine move")
	}
	u.logger.Debug("engine moved",
		zap.String("session", session.ID),
		zap.Stringer("move", decision.Move),
		zap.String("reason", string(decision.Reason)),
		zap.Int("rollouts", decision.Rollouts),
	)
	return nil
}

func engineTurn(session *domain.Session) bool {
	return session.Human.IsSide() && !session.State.Finished() && session.State.Turn != session.Human
}

func sendState(client domain.Client, session *domain.Session, opts ...domain.StatePayloadOption) error {
	err := client.WriteMessage(domain.Message{
		Type:    domain.State,
		Payload: domain.NewStatePayload(session, opts...),
	})
	if err != nil {
		return errors.WithMessage(err, "send message to client")
	}
	return nil
}

func sendFailure(client domain.Client, cause error) error {
	err := client.WriteMessage(domain.Message{
		Type:    domain.Failure,
		Payload: domain.FailurePayload{Message: cause.Error()},
	})
	if err != nil {
		return errors.WithMessage(err, "send message to client")
	}
	return nil
}
