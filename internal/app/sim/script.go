package sim

import "strings"

const nameToken = "{name}"

// Reply maps a keyword to the pool answered when it occurs in a message.
type Reply struct {
	Keyword string
	Pool    []string
}

// Script is the persona's material. Replies is scanned in order and the
// first keyword found wins.
type Script struct {
	Names     []string
	Greetings []string
	FollowUps [][]string
	Replies   []Reply
	Defaults  []string
}

func pick(rnd Rand, pool []string) string {
	if len(pool) == 0 {
		return ""
	}
	return pool[rnd.IntN(len(pool))]
}

func (s *Script) Name(rnd Rand) string { return pick(rnd, s.Names) }

func (s *Script) Greeting(rnd Rand) string { return pick(rnd, s.Greetings) }

func (s *Script) FollowUp(rnd Rand) string {
	if len(s.FollowUps) == 0 {
		return ""
	}
	return pick(rnd, s.FollowUps[rnd.IntN(len(s.FollowUps))])
}

// Reply answers text as persona. Matching is a plain lower-case substring
// test, so "hi" also fires on "this".
func (s *Script) Reply(text, persona string, rnd Rand) string {
	lower := strings.ToLower(text)
	for _, r := range s.Replies {
		if strings.Contains(lower, r.Keyword) {
			return strings.ReplaceAll(pick(rnd, r.Pool), nameToken, persona)
		}
	}
	return pick(rnd, s.Defaults)
}

func DefaultScript() *Script {
	return &Script{
		Names: []string{
			"Priya", "Rahul", "Ananya", "Arjun", "Sneha", "Vikram", "Kavya", "Aditya",
			"Neha", "Rohan", "Ishita", "Karan", "Divya", "Amit", "Pooja", "Varun",
			"Alex", "Emma", "Ryan", "Sophie", "Mike", "Lisa", "David", "Sarah",
		},
		Greetings: []string{"Hey! How are you? 😊", "Hi there! Where are you from?", "Hello! Nice to meet you!"},
		FollowUps: [][]string{
			{"What do you do?", "Are you a student or working?", "What's your hobby?"},
			{"Which city are you from?", "How's the weather there?", "What time is it for you?"},
			{"Do you like music?", "What kind of movies do you watch?", "Are you into gaming?"},
			{"Have you used this site before?", "Found any interesting people here?"},
			{"That's cool!", "Nice! Tell me more", "Interesting 🤔", "Haha really?"},
			{"I'm just chilling at home", "Bored at work lol", "Can't sleep, so here I am"},
			{"What are your plans for the weekend?", "Done with dinner?", "Watching anything good lately?"},
			{"Which state are you from?", "Do you speak Hindi?", "Cricket fan? 🏏"},
			{"IPL is so exciting this year!", "Bollywood or Hollywood?", "Favorite food?"},
		},
		Replies: []Reply{
			{"hi", []string{"Hey! What's up?", "Hello! How are you doing?", "Hi! Nice to meet you 😊"}},
			{"hello", []string{"Hey there!", "Hi! How's it going?", "Hello! Where are you from?"}},
			{"how are you", []string{"I'm good! You?", "Doing great, thanks! What about you?", "Pretty good! Just relaxing"}},
			{"fine", []string{"That's good to hear!", "Nice! So what do you do?", "Cool! Where are you from?"}},
			{"good", []string{"Awesome!", "Great to hear that!", "Nice! What are you up to?"}},
			{"name", []string{"I told you, I'm {name}! 😄", "It's {name}, remember?", "{name} here!"}},
			{"age", []string{"I'm in my 20s", "Old enough 😅", "Let's just say I'm young lol"}},
			{"from", []string{"I'm from India, you?", "Mumbai! What about you?", "Delhi side, wbu?"}},
			{"india", []string{"Oh nice! Which city?", "Same here! 🇮🇳", "India is great!"}},
			{"student", []string{"Yeah I'm studying", "Working actually", "Just graduated recently"}},
			{"work", []string{"I work in IT", "Software developer here", "Just a regular job"}},
			{"hobby", []string{"I love music and movies", "Gaming mostly", "Reading and Netflix"}},
			{"music", []string{"I like Bollywood songs", "Arijit Singh fan!", "All kinds actually"}},
			{"movie", []string{"Love action movies", "Watched any good ones lately?", "I'm into thrillers"}},
			{"cricket", []string{"Big fan! 🏏", "IPL is life!", "Who's your favorite player?"}},
			{"food", []string{"I love biryani!", "Pizza anytime", "Anything spicy works for me"}},
			{"bye", []string{"Bye! Nice talking to you!", "See you around! 👋", "Take care!"}},
		},
		Defaults: []string{"That's interesting!", "Tell me more", "Haha nice", "Oh really?", "Cool!", "I see", "Makes sense", "Yeah totally"},
	}
}
