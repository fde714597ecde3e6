// Package nfl exposes the API-Sports American Football endpoints.
//
// Every method goes through client.Client, so responses are cached and
// requests are spaced by the client's minimum interval. Methods never return
// nil; check Envelope.OK or Envelope.Err.
//
// Example:
//
//	c, err := client.New(client.DefaultConfig(apiKey))
//	if err != nil {
//		return err
//	}
//	defer c.Close()
//
//	api := nfl.New(c)
//	env := api.Teams(ctx, nfl.TeamsParams{League: 1, Season: 2023})
//	if err := env.Err(); err != nil {
//		return err
//	}
package nfl

import (
	"context"

	"github.com/soliditysam/apisports-nfl/pkg/client"
)

// Endpoint paths.
const (
	PathTimezone               = "/timezone"
	PathSeasons                = "/seasons"
	PathLeagues                = "/leagues"
	PathTeams                  = "/teams"
	PathPlayers                = "/players"
	PathInjuries               = "/injuries"
	PathGames                  = "/games"
	PathStandings              = "/standings"
	PathOdds                   = "/odds"
	PathPlayersStatistics      = "/players/statistics"
	PathGamesEvents            = "/games/events"
	PathGamesTeamsStatistics   = "/games/statistics/teams"
	PathGamesPlayersStatistics = "/games/statistics/players"
	PathStandingsConferences   = "/standings/conferences"
	PathStandingsDivisions     = "/standings/divisions"
	PathOddsBets               = "/odds/bets"
	PathOddsBookmakers         = "/odds/bookmakers"
)

// API is the NFL endpoint set on top of a Client.
type API struct {
	client *client.Client
}

// New wraps c. c must not be nil.
func New(c *client.Client) *API {
	if c == nil {
		panic("nfl: client cannot be nil")
	}
	return &API{client: c}
}

// Client returns the underlying client.
func (a *API) Client() *client.Client {
	return a.client
}

// Timezone lists the timezones accepted by Games.
func (a *API) Timezone(ctx context.Context) *client.Envelope {
	return a.client.Get(ctx, PathTimezone, nil)
}

// Seasons lists every available season. Seasons are 4-digit years; a season
// spanning 2018-2019 is 2018.
func (a *API) Seasons(ctx context.Context) *client.Envelope {
	return a.client.Get(ctx, PathSeasons, nil)
}

// Leagues lists competitions with their coverage per season.
func (a *API) Leagues(ctx context.Context, p LeaguesParams) *client.Envelope {
	return a.client.Get(ctx, PathLeagues, p.values())
}

// Teams returns teams matching p.
func (a *API) Teams(ctx context.Context, p TeamsParams) *client.Envelope {
	return a.client.Get(ctx, PathTeams, p.values())
}

// Players returns players matching p.
func (a *API) Players(ctx context.Context, p PlayersParams) *client.Envelope {
	return a.client.Get(ctx, PathPlayers, p.values())
}

// Injuries returns the current injury list.
func (a *API) Injuries(ctx context.Context, p InjuriesParams) *client.Envelope {
	return a.client.Get(ctx, PathInjuries, p.values())
}

// Games returns games matching p.
func (a *API) Games(ctx context.Context, p GamesParams) *client.Envelope {
	return a.client.Get(ctx, PathGames, p.values())
}

// Standings returns a league table.
func (a *API) Standings(ctx context.Context, p StandingsParams) *client.Envelope {
	return a.client.Get(ctx, PathStandings, p.values())
}

// Odds returns pre-match odds. Odds are kept for 7 days upstream.
func (a *API) Odds(ctx context.Context, p OddsParams) *client.Envelope {
	return a.client.Get(ctx, PathOdds, p.values())
}

// PlayersStatistics returns season statistics for players.
func (a *API) PlayersStatistics(ctx context.Context, p PlayersStatisticsParams) *client.Envelope {
	return a.client.Get(ctx, PathPlayersStatistics, p.values())
}

// GamesEvents returns the scoring events of game id.
func (a *API) GamesEvents(ctx context.Context, id int) *client.Envelope {
	q := query{}
	q.setInt("id", id)
	return a.client.Get(ctx, PathGamesEvents, q.values())
}

// GamesTeamsStatistics returns team statistics for game id.
func (a *API) GamesTeamsStatistics(ctx context.Context, id int) *client.Envelope {
	q := query{}
	q.setInt("id", id)
	return a.client.Get(ctx, PathGamesTeamsStatistics, q.values())
}

// GamesPlayersStatistics returns player statistics for a game.
func (a *API) GamesPlayersStatistics(ctx context.Context, p GamesPlayersStatisticsParams) *client.Envelope {
	return a.client.Get(ctx, PathGamesPlayersStatistics, p.values())
}

// StandingsConferences lists the conferences usable in Standings.
func (a *API) StandingsConferences(ctx context.Context, p SeasonParams) *client.Envelope {
	return a.client.Get(ctx, PathStandingsConferences, p.values())
}

// StandingsDivisions lists the divisions usable in Standings.
func (a *API) StandingsDivisions(ctx context.Context, p SeasonParams) *client.Envelope {
	return a.client.Get(ctx, PathStandingsDivisions, p.values())
}

// OddsBets lists the bet types usable in Odds.
func (a *API) OddsBets(ctx context.Context) *client.Envelope {
	return a.client.Get(ctx, PathOddsBets, nil)
}

// OddsBookmakers lists the bookmakers usable in Odds.
func (a *API) OddsBookmakers(ctx context.Context) *client.Envelope {
	return a.client.Get(ctx, PathOddsBookmakers, nil)
}
