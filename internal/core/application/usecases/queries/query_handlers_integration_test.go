package queries_test

import (
	"context"
	"testing"
	"time"

	"booking/internal/adapters/out/postgres"
	"booking/internal/adapters/out/postgres/pgtest"
	"booking/internal/core/application/usecases/queries"
	"booking/internal/core/domain/model/audit"
	"booking/internal/core/domain/model/kernel"
	"booking/internal/core/domain/model/order"
	"booking/internal/core/domain/model/payment"
	"booking/internal/core/domain/model/proprofile"
	"booking/internal/core/ports"
	"booking/internal/pkg/errs"

	"github.com/stretchr/testify/suite"
)

var now = time.Date(2026, 5, 4, 12, 0, 0, 0, time.UTC)

type QueryHandlersIntegrationTestSuite struct {
	suite.Suite
	pg      *pgtest.Database
	factory ports.UnitOfWorkFactory

	client order.Actor
	proUsr order.Actor
	proID  kernel.UUID
}

func (suite *QueryHandlersIntegrationTestSuite) SetupSuite() {
	pg, err := pgtest.Start(context.Background())
	suite.Require().NoError(err)
	suite.pg = pg
	suite.factory = postgres.NewGormUnitOfWorkFactory(pg.DB)
}

func (suite *QueryHandlersIntegrationTestSuite) TearDownSuite() {
	if suite.pg != nil {
		suite.Require().NoError(suite.pg.Terminate(context.Background()))
	}
}

func (suite *QueryHandlersIntegrationTestSuite) SetupTest() {
	suite.Require().NoError(suite.pg.Truncate())

	suite.client = suite.actor(order.RoleClient)
	suite.proUsr = suite.actor(order.RolePro)
	suite.proID = kernel.NewUUID()

	rate := suite.brl(8000)
	pro, err := proprofile.NewProProfile(suite.proID, suite.proUsr.ID(), "Ana", rate, "acct-1", now)
	suite.Require().NoError(err)
	suite.Require().NoError(pro.Approve(now))
	suite.write(func(uow ports.UnitOfWork) error {
		return uow.ProProfileRepository().Add(context.Background(), pro)
	})
}

func (suite *QueryHandlersIntegrationTestSuite) actor(role order.Role) order.Actor {
	a, err := order.NewActor(kernel.NewUUID(), role)
	suite.Require().NoError(err)
	return a
}

func (suite *QueryHandlersIntegrationTestSuite) brl(cents int64) kernel.Money {
	m, err := kernel.NewMoney(cents, "BRL")
	suite.Require().NoError(err)
	return m
}

func (suite *QueryHandlersIntegrationTestSuite) write(fn func(uow ports.UnitOfWork) error) {
	ctx := context.Background()
	uow := suite.factory.Create()
	suite.Require().NoError(uow.Begin(ctx))
	suite.Require().NoError(fn(uow))
	suite.Require().NoError(uow.Commit(ctx))
}

func (suite *QueryHandlersIntegrationTestSuite) seedOrder(status order.Status) *order.Order {
	window, err := kernel.NewTimeWindow(now.Add(24*time.Hour), now.Add(27*time.Hour))
	suite.Require().NoError(err)
	quote := suite.brl(24000)
	o, err := order.NewOrder(kernel.NewUUID(), suite.client.ID(), suite.proID, kernel.NewUUID(), window,
		order.Terms{Mode: order.PricingFixed, QuotedAmount: &quote}, now)
	suite.Require().NoError(err)
	if status != order.Draft {
		_, _, err = o.Force(status, now)
		suite.Require().NoError(err)
	}
	suite.write(func(uow ports.UnitOfWork) error {
		return uow.OrderRepository().Add(context.Background(), o)
	})
	return o
}

func (suite *QueryHandlersIntegrationTestSuite) TestGetOrder_ReturnsReadModelWithActivePayment() {
	o := suite.seedOrder(order.Confirmed)
	p, err := payment.NewPayment(kernel.NewUUID(), o.ID(), "mercadopago", suite.brl(24000), now)
	suite.Require().NoError(err)
	suite.Require().NoError(p.ApplyHold(payment.Hold{
		Reference: "mp-1", Status: payment.Authorized, Authorized: suite.brl(24000),
	}, now))
	suite.write(func(uow ports.UnitOfWork) error {
		return uow.PaymentRepository().Add(context.Background(), p)
	})

	query, err := queries.NewGetOrderQuery(o.ID(), suite.client)
	suite.Require().NoError(err)
	view, err := queries.NewGetOrderQueryHandler(suite.pg.DB).Handle(context.Background(), query)

	suite.Require().NoError(err)
	suite.True(view.ID.IsEqual(o.ID()))
	suite.Equal(order.Confirmed.String(), view.Status)
	suite.Equal("BRL", view.Currency)
	suite.Require().NotNil(view.QuotedAmountCents)
	suite.Equal(int64(24000), *view.QuotedAmountCents)
	suite.Nil(view.HourlyRateCents)
	suite.True(view.ChatOpen)
	suite.Require().NotNil(view.Payment)
	suite.Equal(payment.Authorized.String(), view.Payment.Status)
	suite.Equal(int64(24000), view.Payment.AuthorizedCents)
}

func (suite *QueryHandlersIntegrationTestSuite) TestGetOrder_Visibility() {
	o := suite.seedOrder(order.PendingProConfirmation)
	handler := queries.NewGetOrderQueryHandler(suite.pg.DB)

	for _, a := range []order.Actor{suite.client, suite.proUsr, suite.actor(order.RoleAdmin)} {
		query, err := queries.NewGetOrderQuery(o.ID(), a)
		suite.Require().NoError(err)
		view, err := handler.Handle(context.Background(), query)
		suite.Require().NoError(err, a.Role().String())
		suite.Nil(view.Payment)
	}

	query, err := queries.NewGetOrderQuery(o.ID(), suite.actor(order.RoleClient))
	suite.Require().NoError(err)
	_, err = handler.Handle(context.Background(), query)
	suite.Require().ErrorIs(err, errs.ErrForbidden)
}

func (suite *QueryHandlersIntegrationTestSuite) TestGetOrder_Unknown() {
	query, err := queries.NewGetOrderQuery(kernel.NewUUID(), suite.client)
	suite.Require().NoError(err)

	_, err = queries.NewGetOrderQueryHandler(suite.pg.DB).Handle(context.Background(), query)

	suite.Require().ErrorIs(err, errs.ErrObjectNotFound)
}

func (suite *QueryHandlersIntegrationTestSuite) TestIsChatOpen_FollowsPersistedStatus() {
	cases := map[order.Status]bool{
		order.PendingProConfirmation: false,
		order.Accepted:               true,
		order.InProgress:             true,
		order.AwaitingClientApproval: true,
		order.Disputed:               false,
		order.Paid:                   false,
	}
	handler := queries.NewIsChatOpenQueryHandler(suite.pg.DB)

	for status, open := range cases {
		o := suite.seedOrder(status)
		query, err := queries.NewIsChatOpenQuery(o.ID())
		suite.Require().NoError(err)

		resp, err := handler.Handle(context.Background(), query)

		suite.Require().NoError(err)
		suite.Equal(open, resp.Open, status.String())
		suite.Equal(status.String(), resp.Status)
	}
}

func (suite *QueryHandlersIntegrationTestSuite) TestIsChatOpen_Unknown() {
	query, err := queries.NewIsChatOpenQuery(kernel.NewUUID())
	suite.Require().NoError(err)

	_, err = queries.NewIsChatOpenQueryHandler(suite.pg.DB).Handle(context.Background(), query)

	suite.Require().ErrorIs(err, errs.ErrObjectNotFound)
}

func (suite *QueryHandlersIntegrationTestSuite) TestGetAuditTrail_InsertionOrder() {
	o := suite.seedOrder(order.Accepted)
	types := []audit.EventType{audit.OrderCreated, audit.OrderStatusChanged, audit.OrderStatusForced}
	suite.write(func(uow ports.UnitOfWork) error {
		for _, et := range types {
			entry, err := audit.NewEntry(kernel.NewOrderedUUID(), audit.Record{
				EventType:  et,
				ActorID:    suite.client.IDString(),
				ActorRole:  suite.client.Role().String(),
				Action:     "test",
				EntityType: audit.EntityOrder,
				EntityID:   o.ID().String(),
				Metadata:   map[string]any{audit.KeyNewStatus: "ACCEPTED"},
			}, now)
			if err != nil {
				return err
			}
			if err := uow.AuditRepository().Append(context.Background(), entry); err != nil {
				return err
			}
		}
		return nil
	})

	query, err := queries.NewGetAuditTrailQuery(o.ID().String(), 0, suite.actor(order.RoleAdmin))
	suite.Require().NoError(err)
	trail, err := queries.NewGetAuditTrailQueryHandler(suite.pg.DB).Handle(context.Background(), query)

	suite.Require().NoError(err)
	suite.Require().Len(trail, 3)
	for i, et := range types {
		suite.Equal(string(et), trail[i].EventType)
	}
	suite.Equal("ACCEPTED", trail[0].Metadata[audit.KeyNewStatus])
}

func TestQueryHandlersIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(QueryHandlersIntegrationTestSuite))
}
