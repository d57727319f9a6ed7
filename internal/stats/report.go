package stats

import "github.com/dkeye/Strangers/internal/app"

type Online struct {
	Total                int `json:"total"`
	TextMode             int `json:"text_mode"`
	VideoMode            int `json:"video_mode"`
	WaitingForPartner    int `json:"waiting_for_partner"`
	ChattingWithRealUser int `json:"chatting_with_real_user"`
	ChattingWithBot      int `json:"chatting_with_bot"`
}

type Queues struct {
	TextQueue  int `json:"text_queue"`
	VideoQueue int `json:"video_queue"`
}

// Report is the admin stats document.
type Report struct {
	Online   Online         `json:"online"`
	Queues   Queues         `json:"queues"`
	Lifetime Lifetime       `json:"lifetime"`
	Users    []app.UserView `json:"users"`
}

func (c *Collector) Report(snap app.Snapshot) Report {
	users := snap.Users
	if users == nil {
		users = []app.UserView{}
	}
	return Report{
		Online: Online{
			Total:                snap.Total,
			TextMode:             snap.TextMode,
			VideoMode:            snap.VideoMode,
			WaitingForPartner:    snap.Waiting,
			ChattingWithRealUser: snap.WithHuman,
			ChattingWithBot:      snap.WithSimulated,
		},
		Queues: Queues{
			TextQueue:  snap.TextQueue,
			VideoQueue: snap.VideoQueue,
		},
		Lifetime: c.Lifetime(),
		Users:    users,
	}
}
