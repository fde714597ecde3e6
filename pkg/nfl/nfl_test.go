package nfl

import (
	"context"
	"net/url"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soliditysam/apisports-nfl/internal/testutil"
	"github.com/soliditysam/apisports-nfl/pkg/client"
)

func newTestAPI(t *testing.T) (*API, *testutil.MockAPI) {
	t.Helper()

	mock := testutil.NewMockAPI()
	t.Cleanup(mock.Close)

	cfg := client.DefaultConfig(testutil.TestAPIKey)
	cfg.BaseURL = mock.URL()
	cfg.CacheFile = filepath.Join(t.TempDir(), "cache.json")
	cfg.MinRequestInterval = client.NoInterval

	c, err := client.New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })

	return New(c), mock
}

func TestAPI_Endpoints(t *testing.T) {
	tests := []struct {
		name  string
		call  func(ctx context.Context, a *API) *client.Envelope
		path  string
		query url.Values
	}{
		{
			name: "timezone",
			call: func(ctx context.Context, a *API) *client.Envelope { return a.Timezone(ctx) },
			path: "/timezone",
		},
		{
			name: "seasons",
			call: func(ctx context.Context, a *API) *client.Envelope { return a.Seasons(ctx) },
			path: "/seasons",
		},
		{
			name: "leagues without filters",
			call: func(ctx context.Context, a *API) *client.Envelope {
				return a.Leagues(ctx, LeaguesParams{})
			},
			path: "/leagues",
		},
		{
			name: "leagues",
			call: func(ctx context.Context, a *API) *client.Envelope {
				return a.Leagues(ctx, LeaguesParams{Season: 2023, Current: true})
			},
			path:  "/leagues",
			query: url.Values{"season": {"2023"}, "current": {"true"}},
		},
		{
			name: "teams",
			call: func(ctx context.Context, a *API) *client.Envelope {
				return a.Teams(ctx, TeamsParams{League: 1, Season: 2023, Code: "KC"})
			},
			path:  "/teams",
			query: url.Values{"league": {"1"}, "season": {"2023"}, "code": {"KC"}},
		},
		{
			name: "players",
			call: func(ctx context.Context, a *API) *client.Envelope {
				return a.Players(ctx, PlayersParams{Team: 17, Season: 2023, Search: "mah"})
			},
			path:  "/players",
			query: url.Values{"team": {"17"}, "season": {"2023"}, "search": {"mah"}},
		},
		{
			name: "injuries",
			call: func(ctx context.Context, a *API) *client.Envelope {
				return a.Injuries(ctx, InjuriesParams{Team: 17, Date: "2023-09-07"})
			},
			path:  "/injuries",
			query: url.Values{"team": {"17"}, "date": {"2023-09-07"}},
		},
		{
			name: "games",
			call: func(ctx context.Context, a *API) *client.Envelope {
				return a.Games(ctx, GamesParams{League: 1, Season: 2023, Timezone: "America/New_York", H2H: "17-16"})
			},
			path: "/games",
			query: url.Values{
				"league":   {"1"},
				"season":   {"2023"},
				"timezone": {"America/New_York"},
				"h2h":      {"17-16"},
			},
		},
		{
			name: "live games",
			call: func(ctx context.Context, a *API) *client.Envelope {
				return a.Games(ctx, GamesParams{Live: "all"})
			},
			path:  "/games",
			query: url.Values{"live": {"all"}},
		},
		{
			name: "standings",
			call: func(ctx context.Context, a *API) *client.Envelope {
				return a.Standings(ctx, StandingsParams{League: 1, Season: 2023, Conference: "American Football Conference"})
			},
			path: "/standings",
			query: url.Values{
				"league":     {"1"},
				"season":     {"2023"},
				"conference": {"American Football Conference"},
			},
		},
		{
			name: "odds",
			call: func(ctx context.Context, a *API) *client.Envelope {
				return a.Odds(ctx, OddsParams{Game: 7532, Bookmaker: 4})
			},
			path:  "/odds",
			query: url.Values{"game": {"7532"}, "bookmaker": {"4"}},
		},
		{
			name: "players statistics",
			call: func(ctx context.Context, a *API) *client.Envelope {
				return a.PlayersStatistics(ctx, PlayersStatisticsParams{ID: 5, Season: 2022})
			},
			path:  "/players/statistics",
			query: url.Values{"id": {"5"}, "season": {"2022"}},
		},
		{
			name: "games events",
			call: func(ctx context.Context, a *API) *client.Envelope {
				return a.GamesEvents(ctx, 7532)
			},
			path:  "/games/events",
			query: url.Values{"id": {"7532"}},
		},
		{
			name: "games teams statistics",
			call: func(ctx context.Context, a *API) *client.Envelope {
				return a.GamesTeamsStatistics(ctx, 7532)
			},
			path:  "/games/statistics/teams",
			query: url.Values{"id": {"7532"}},
		},
		{
			name: "games players statistics",
			call: func(ctx context.Context, a *API) *client.Envelope {
				return a.GamesPlayersStatistics(ctx, GamesPlayersStatisticsParams{ID: 7532, Group: "Passing", Team: 17})
			},
			path:  "/games/statistics/players",
			query: url.Values{"id": {"7532"}, "group": {"Passing"}, "team": {"17"}},
		},
		{
			name: "standings conferences",
			call: func(ctx context.Context, a *API) *client.Envelope {
				return a.StandingsConferences(ctx, SeasonParams{League: 1, Season: 2023})
			},
			path:  "/standings/conferences",
			query: url.Values{"league": {"1"}, "season": {"2023"}},
		},
		{
			name: "standings divisions",
			call: func(ctx context.Context, a *API) *client.Envelope {
				return a.StandingsDivisions(ctx, SeasonParams{League: 1, Season: 2023})
			},
			path:  "/standings/divisions",
			query: url.Values{"league": {"1"}, "season": {"2023"}},
		},
		{
			name: "odds bets",
			call: func(ctx context.Context, a *API) *client.Envelope { return a.OddsBets(ctx) },
			path: "/odds/bets",
		},
		{
			name: "odds bookmakers",
			call: func(ctx context.Context, a *API) *client.Envelope { return a.OddsBookmakers(ctx) },
			path: "/odds/bookmakers",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api, mock := newTestAPI(t)

			env := tt.call(context.Background(), api)
			require.NoError(t, env.Err())
			assert.Equal(t, tt.path, env.Meta.Endpoint)

			req, ok := mock.LastRequest()
			require.True(t, ok, "no request recorded")
			assert.Equal(t, tt.path, req.Path)
			assert.Equal(t, testutil.TestAPIKey, req.APIKey)
			if len(tt.query) == 0 {
				assert.Empty(t, req.Query)
			} else {
				assert.Equal(t, tt.query, req.Query)
			}
		})
	}
}

func TestAPI_ZeroValuesOmitted(t *testing.T) {
	tests := []struct {
		name   string
		values url.Values
	}{
		{"leagues", LeaguesParams{}.values()},
		{"teams", TeamsParams{}.values()},
		{"players", PlayersParams{}.values()},
		{"injuries", InjuriesParams{}.values()},
		{"games", GamesParams{}.values()},
		{"standings", StandingsParams{}.values()},
		{"odds", OddsParams{}.values()},
		{"players statistics", PlayersStatisticsParams{}.values()},
		{"games players statistics", GamesPlayersStatisticsParams{}.values()},
		{"season", SeasonParams{}.values()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Empty(t, tt.values)
		})
	}
}

func TestAPI_RepeatedCallServedFromCache(t *testing.T) {
	api, mock := newTestAPI(t)
	mock.SetResponse(PathSeasons, testutil.NewHealthyResponse(`{"get":"seasons","results":2,"response":[2022,2023]}`))
	ctx := context.Background()

	first := api.Seasons(ctx)
	second := api.Seasons(ctx)

	require.NoError(t, second.Err())
	assert.False(t, first.Meta.FromCache)
	assert.True(t, second.Meta.FromCache)
	assert.Equal(t, 1, mock.RequestCount())

	var body struct {
		Response []int `json:"response"`
	}
	require.NoError(t, second.Decode(&body))
	assert.Equal(t, []int{2022, 2023}, body.Response)
}

func TestAPI_ErrorsPassThrough(t *testing.T) {
	api, mock := newTestAPI(t)
	mock.SetResponse(PathOdds, testutil.NewForbiddenResponse())

	env := api.Odds(context.Background(), OddsParams{Game: 1})
	require.False(t, env.OK())
	assert.True(t, client.IsKind(env.Err(), client.KindForbidden))
	assert.Equal(t, client.MsgForbidden, env.Error.Message)
	assert.Equal(t, "1", env.Error.Params.Get("game"))
}

func TestNew_NilClient(t *testing.T) {
	assert.Panics(t, func() { New(nil) })
}
