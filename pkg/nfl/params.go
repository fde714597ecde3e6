package nfl

import (
	"net/url"
	"strconv"
)

// query collects request parameters, skipping zero values.
type query url.Values

func (q query) setInt(name string, v int) {
	if v != 0 {
		url.Values(q).Set(name, strconv.Itoa(v))
	}
}

func (q query) setString(name, v string) {
	if v != "" {
		url.Values(q).Set(name, v)
	}
}

func (q query) setBool(name string, v bool) {
	if v {
		url.Values(q).Set(name, "true")
	}
}

func (q query) values() url.Values {
	return url.Values(q)
}

// LeaguesParams filters Leagues.
type LeaguesParams struct {
	Season  int
	Current bool
}

func (p LeaguesParams) values() url.Values {
	q := query{}
	q.setInt("season", p.Season)
	q.setBool("current", p.Current)
	return q.values()
}

// TeamsParams filters Teams. Search needs at least 3 characters upstream.
type TeamsParams struct {
	ID     int
	League int
	Season int
	Name   string
	Code   string
	Search string
}

func (p TeamsParams) values() url.Values {
	q := query{}
	q.setInt("id", p.ID)
	q.setInt("league", p.League)
	q.setInt("season", p.Season)
	q.setString("name", p.Name)
	q.setString("code", p.Code)
	q.setString("search", p.Search)
	return q.values()
}

// PlayersParams filters Players.
type PlayersParams struct {
	ID     int
	Name   string
	Team   int
	Season int
	Search string
}

func (p PlayersParams) values() url.Values {
	q := query{}
	q.setInt("id", p.ID)
	q.setString("name", p.Name)
	q.setInt("team", p.Team)
	q.setInt("season", p.Season)
	q.setString("search", p.Search)
	return q.values()
}

// InjuriesParams filters Injuries. Date is YYYY-MM-DD.
type InjuriesParams struct {
	Player int
	Team   int
	Date   string
}

func (p InjuriesParams) values() url.Values {
	q := query{}
	q.setInt("player", p.Player)
	q.setInt("team", p.Team)
	q.setString("date", p.Date)
	return q.values()
}

// GamesParams filters Games. H2H is two team ids joined by a dash ("1-2") and
// Live is "all" or a dash separated list of league ids.
type GamesParams struct {
	ID       int
	Date     string
	League   int
	Season   int
	Team     int
	H2H      string
	Live     string
	Timezone string
}

func (p GamesParams) values() url.Values {
	q := query{}
	q.setInt("id", p.ID)
	q.setString("date", p.Date)
	q.setInt("league", p.League)
	q.setInt("season", p.Season)
	q.setInt("team", p.Team)
	q.setString("h2h", p.H2H)
	q.setString("live", p.Live)
	q.setString("timezone", p.Timezone)
	return q.values()
}

// StandingsParams filters Standings. League and Season are required upstream.
type StandingsParams struct {
	League     int
	Season     int
	Team       int
	Conference string
	Division   string
}

func (p StandingsParams) values() url.Values {
	q := query{}
	q.setInt("league", p.League)
	q.setInt("season", p.Season)
	q.setInt("team", p.Team)
	q.setString("conference", p.Conference)
	q.setString("division", p.Division)
	return q.values()
}

// OddsParams filters Odds.
type OddsParams struct {
	Game      int
	Bookmaker int
	Bet       int
}

func (p OddsParams) values() url.Values {
	q := query{}
	q.setInt("game", p.Game)
	q.setInt("bookmaker", p.Bookmaker)
	q.setInt("bet", p.Bet)
	return q.values()
}

// PlayersStatisticsParams filters PlayersStatistics.
type PlayersStatisticsParams struct {
	ID     int
	Team   int
	Season int
	League int
}

func (p PlayersStatisticsParams) values() url.Values {
	q := query{}
	q.setInt("id", p.ID)
	q.setInt("team", p.Team)
	q.setInt("season", p.Season)
	q.setInt("league", p.League)
	return q.values()
}

// GamesPlayersStatisticsParams filters GamesPlayersStatistics. Group is a
// statistics group such as "passing" or "defensive".
type GamesPlayersStatisticsParams struct {
	ID     int
	Group  string
	Team   int
	Player int
}

func (p GamesPlayersStatisticsParams) values() url.Values {
	q := query{}
	q.setInt("id", p.ID)
	q.setString("group", p.Group)
	q.setInt("team", p.Team)
	q.setInt("player", p.Player)
	return q.values()
}

// SeasonParams selects a league season for the conference and division lists.
type SeasonParams struct {
	League int
	Season int
}

func (p SeasonParams) values() url.Values {
	q := query{}
	q.setInt("league", p.League)
	q.setInt("season", p.Season)
	return q.values()
}
