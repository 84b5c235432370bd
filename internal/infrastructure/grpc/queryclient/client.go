package queryclient

import (
	"context"
	"errors"
	"fmt"
	"time"

	"assetquotes-service/internal/application"
	"assetquotes-service/internal/infrastructure/grpc/querypb"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

var _ application.QueryInvoker = (*Client)(nil)

type traceIDKey struct{}

// WithTraceID sets the trace id sent with queries made under ctx.
func WithTraceID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, traceIDKey{}, id)
}

func traceIDFrom(ctx context.Context) string {
	if id, ok := ctx.Value(traceIDKey{}).(string); ok && id != "" {
		return id
	}
	return uuid.NewString()
}

// Client runs range queries against the API process over gRPC.
type Client struct {
	cli     querypb.QueryServiceClient
	timeout time.Duration
}

func New(ctx context.Context, target string, timeout time.Duration, opts ...grpc.DialOption) (*Client, func(), error) {
	opts = append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)
	conn, err := grpc.DialContext(ctx, target, opts...)
	if err != nil {
		return nil, nil, err
	}
	return NewFromConn(conn, timeout), func() { _ = conn.Close() }, nil
}

func NewFromConn(cc grpc.ClientConnInterface, timeout time.Duration) *Client {
	return &Client{cli: querypb.NewQueryServiceClient(cc), timeout: timeout}
}

func (c *Client) Query(ctx context.Context, req application.QueryRequest) (application.QueryResult, error) {
	const op = "queryclient.Query"
	traceID := traceIDFrom(ctx)
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	var trailer metadata.MD
	resp, err := c.cli.GetAssetPrices(ctx, &querypb.GetAssetPricesRequest{
		AssetName: req.AssetName,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		TraceId:   traceID,
	}, grpc.Trailer(&trailer))
	if err != nil {
		return application.QueryResult{}, fromStatus(op, err, trailer)
	}
	return application.QueryResult{Count: resp.Count, Items: resp.Items}, nil
}

// fromStatus restores the kind the server declared in the trailer. Failures
// without one never reached the query service and are reported as internal.
func fromStatus(op string, err error, trailer metadata.MD) error {
	st, ok := status.FromError(err)
	if !ok {
		return application.E(application.KindInternal, op, err)
	}
	msg := errors.New(st.Message())
	if v := trailer.Get(querypb.ErrorKindTrailer); len(v) > 0 {
		if kind, ok := application.ParseKind(v[0]); ok {
			return application.E(kind, op, msg)
		}
	}
	if st.Code() == codes.InvalidArgument {
		return application.E(application.KindInvalidArgument, op, msg)
	}
	return application.E(application.KindInternal, op, fmt.Errorf("%s: %w", st.Code(), msg))
}
