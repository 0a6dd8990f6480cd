package channel_test

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"walletbridge/channel"
)

type toggleParams struct {
	Enable bool    `arg:"enable"`
	Name   *string `arg:"name"`
	Count  int     `arg:"count"`
}

func toggleSet(invoked *int, got *toggleParams) *channel.MethodSet {
	schema := channel.Schema{
		channel.Required("enable", channel.Bool),
		channel.Optional("name", channel.String),
		channel.Optional("count", channel.Int),
	}
	return channel.NewMethodSet(
		channel.Bind("toggle", schema, "TOGGLE_FAILED", func(ctx context.Context, p toggleParams) *channel.Reply {
			*invoked++
			*got = p
			return channel.Succeed(nil)
		}),
	)
}

func TestSchemaRejectsBeforeInvoking(t *testing.T) {
	for _, tc := range []struct {
		name string
		args channel.Args
	}{
		{"missing", channel.Args{}},
		{"nil map", nil},
		{"null", channel.Args{"enable": nil}},
		{"string for bool", channel.Args{"enable": "true"}},
		{"number for bool", channel.Args{"enable": 1}},
		{"optional mistyped", channel.Args{"enable": true, "name": 3}},
		{"fractional int", channel.Args{"enable": true, "count": 1.5}},
		{"infinite int", channel.Args{"enable": true, "count": math.Inf(1)}},
		{"negative infinite int", channel.Args{"enable": true, "count": math.Inf(-1)}},
		{"NaN int", channel.Args{"enable": true, "count": math.NaN()}},
		{"int beyond int64", channel.Args{"enable": true, "count": 1e19}},
		{"uint beyond int64", channel.Args{"enable": true, "count": uint64(math.MaxUint64)}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			invoked := 0
			var got toggleParams
			set := toggleSet(&invoked, &got)

			reply := set.HandleCall(context.Background(), channel.Call{Method: "toggle", Args: tc.args})
			res, ok := reply.Result()
			require.True(t, ok)
			assert.Equal(t, channel.CodeInvalidArgument, res.Code())
			assert.Zero(t, invoked)
		})
	}
}

func TestSchemaDecodesTypedParams(t *testing.T) {
	invoked := 0
	var got toggleParams
	set := toggleSet(&invoked, &got)

	reply := set.HandleCall(context.Background(), channel.Call{
		Method: "toggle",
		Args:   channel.Args{"enable": true, "name": "birthday", "count": float64(3), "extra": "ignored"},
	})
	res, ok := reply.Result()
	require.True(t, ok)
	require.True(t, res.IsSuccess())

	assert.Equal(t, 1, invoked)
	assert.True(t, got.Enable)
	require.NotNil(t, got.Name)
	assert.Equal(t, "birthday", *got.Name)
	assert.Equal(t, 3, got.Count)
}

func TestSchemaOptionalAbsent(t *testing.T) {
	invoked := 0
	var got toggleParams
	set := toggleSet(&invoked, &got)

	reply := set.HandleCall(context.Background(), channel.Call{
		Method: "toggle",
		Args:   channel.Args{"enable": false, "name": nil, "count": json.Number("7")},
	})
	res, _ := reply.Result()
	require.True(t, res.IsSuccess())
	assert.Nil(t, got.Name)
	assert.False(t, got.Enable)
}

func TestMethodPanicIsClassified(t *testing.T) {
	set := channel.NewMethodSet(
		channel.NoArgs("boom", channel.CodeLaunchError, func(ctx context.Context) *channel.Reply {
			panic("activity not found")
		}),
		channel.NoArgs("boom2", "", func(ctx context.Context) *channel.Reply {
			panic("no code")
		}),
	)

	res, _ := set.HandleCall(context.Background(), channel.Call{Method: "boom"}).Result()
	assert.Equal(t, channel.CodeLaunchError, res.Code())
	assert.Equal(t, "activity not found", res.Err.Message)

	res, _ = set.HandleCall(context.Background(), channel.Call{Method: "boom2"}).Result()
	assert.Equal(t, channel.CodeInternal, res.Code())

	assert.Equal(t, []string{"boom", "boom2"}, set.Names())
}

func TestReplyResolvesOnce(t *testing.T) {
	r := channel.NewReply()
	var seen []channel.Result
	r.OnResolve(func(res channel.Result) { seen = append(seen, res) })

	assert.True(t, r.Resolve(channel.Success("first")))
	assert.False(t, r.Resolve(channel.Success("second")))

	res, ok := r.Result()
	require.True(t, ok)
	assert.Equal(t, "first", res.Value)
	require.Len(t, seen, 1)

	late := 0
	r.OnResolve(func(channel.Result) { late++ })
	assert.Equal(t, 1, late)
}

func TestReplyWaitHonorsContext(t *testing.T) {
	r := channel.NewReply()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := r.Wait(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	r.Resolve(channel.Success(1))
	res, err := r.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Value)
}

func TestAsCallError(t *testing.T) {
	assert.Nil(t, channel.AsCallError(nil, channel.CodeLaunchError))

	ce := channel.AsCallError(errors.New("no store"), channel.CodeLaunchError)
	assert.Equal(t, channel.CodeLaunchError, ce.Code)
	assert.Equal(t, "no store", ce.Message)

	wrapped := channel.AsCallError(channel.Errorf(channel.CodeNotSupported, "nope"), channel.CodeLaunchError)
	assert.Equal(t, channel.CodeNotSupported, wrapped.Code)
}
