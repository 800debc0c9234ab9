package supervisor

import (
	"fmt"
	"strings"
)

// AgentID identifies one specialist agent the supervisor can route to.
type AgentID string

const (
	// AgentMovieLookup answers plot, cast, director, and genre questions
	// from the movie summaries store.
	AgentMovieLookup AgentID = "movie_lookup"
	// AgentTorrent searches for and manages movie downloads through the
	// torrent client.
	AgentTorrent AgentID = "torrent"
	// AgentLibrary answers questions about movies already on disk by
	// scanning the configured library roots.
	AgentLibrary AgentID = "library"
	// AgentSubtitles finds and downloads subtitles for movies.
	AgentSubtitles AgentID = "subtitles"
	// Finish ends the routing loop and returns the latest agent reply to
	// the user.
	Finish AgentID = "finish"
)

// Agents lists every routable specialist, excluding the Finish sentinel.
func Agents() []AgentID {
	return []AgentID{AgentMovieLookup, AgentTorrent, AgentLibrary, AgentSubtitles}
}

// ParseAgentID converts a raw routing decision into an AgentID. Unknown
// values are an error so a malformed LLM reply never dispatches work to an
// arbitrary agent.
func ParseAgentID(raw string) (AgentID, error) {
	switch AgentID(strings.ToLower(strings.TrimSpace(raw))) {
	case AgentMovieLookup:
		return AgentMovieLookup, nil
	case AgentTorrent:
		return AgentTorrent, nil
	case AgentLibrary:
		return AgentLibrary, nil
	case AgentSubtitles:
		return AgentSubtitles, nil
	case Finish:
		return Finish, nil
	default:
		return "", fmt.Errorf("unknown agent %q", raw)
	}
}
