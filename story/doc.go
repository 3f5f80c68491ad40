// Package story drives scripted sequences (conversations, cut-scenes,
// scripted events) one simulation frame at a time.
//
// A story is a graph of States. Each State holds the Conditions that must all
// hold before it can be entered, the Actions it fires on entry, optional exit
// Actions, sub-steps that are evaluated every frame while it is active, and
// an ordered list of successors. A Machine owns the active State of one story
// thread and is advanced once per frame by the game loop:
//
//	root := story.NewState("init")
//	root.AddAction(story.Play("body", "B_Final", 1, 40))
//	root.CreateSubStep("chirp").
//		AddCondition(story.Tap("body", 25)).
//		AddAction(story.PlaySound(story.Sound{Path: "sfx/chirp.wav", Volume: 1}))
//	root.CreateSuccessor("talk").AddCondition(story.OnEvent("ShowDialogue"))
//
//	m, err := story.NewMachine(root)
//	...
//	m.Advance(ctx) // every frame
//
// Successors are tested in declaration order and the first one whose
// conditions all hold becomes active. Sub-steps never become active; when
// their conditions hold they fire their actions for that frame.
package story
