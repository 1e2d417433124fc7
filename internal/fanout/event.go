package fanout

// EventType is the closed set of events the orchestrator knows how to fan out.
type EventType string

const (
	EventLike        EventType = "like"
	EventComment     EventType = "comment"
	EventReply       EventType = "reply"
	EventCommentLike EventType = "comment_like"
	EventMention     EventType = "mention"
	EventFollow      EventType = "follow"
	EventStory       EventType = "story"
	EventMessage     EventType = "message"
)

// Event is one authored action to be fanned out. Recipient candidates come
// from three sources, all optional: @-mentions scanned out of Text,
// pre-extracted Usernames (webhook path), and the direct TargetOwnerID.
// Story events additionally resolve the issuer's follower set.
type Event struct {
	Type          EventType
	ActorID       uint
	Text          string   // free text scanned for @-mentions
	Usernames     []string // pre-extracted mention usernames
	TargetOwnerID uint     // owner of the liked/commented/replied entity, or the DM recipient
	TargetID      string   // post ID, story ID, channel ID
	TargetType    string   // "post", "comment", "story", "channel", "user"
	Message       string   // human-readable notification text
}
