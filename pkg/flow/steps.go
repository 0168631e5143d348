package flow

func buildSteps() map[StepId]Step {
	steps := []Step{
		{
			Id:     StepWhere,
			Prompt: "<b>Where do you want to go for care?</b>",
			Choices: []Choice{
				{Value: "emergency", Label: "Emergency Room (life-threatening)", Next: StepEmergency},
				{Value: "urgent", Label: "Urgent Care (same-day, not life-threatening)", Next: StepUrgent},
				{Value: "shc", Label: "ASU Student Health Center (routine / cheapest)", Next: StepSHC},
			},
		},
		{
			Id: StepEmergency,
			Prompt: "If this is a life-threatening emergency, <b>call 911 or go to the nearest Emergency Room now</b>. " +
				"Do not wait for insurance questions.\n\n" +
				"From the plan: - ER visits have a <b>$200 copay</b> (waived if admitted) - Emergency care is covered " +
				"even out-of-network",
		},
		{
			Id: StepUrgent,
			Prompt: "<b>Urgent Care</b> works for same-day issues that are not life-threatening " +
				"(sprains, fevers, infections).\n\n" +
				"From the plan: - Urgent care visits have a <b>$25 copay</b> - Stay in-network to avoid extra charges\n\n" +
				"Find Urgent Care Centers: - Use the UHC SR provider finder: " +
				`<a href="http://www.uhcsr.com/lookupredirect.aspx?delsys=52">Find in-network urgent care</a>` +
				" - Bring your insurance card and photo ID",
			Choices: []Choice{
				{Value: "shc", Label: "Actually, tell me about the Student Health Center", Next: StepSHC},
				{Value: "script", Label: "Give me a call script", Next: StepScript},
				{Value: "prep", Label: "What should I bring?", Next: StepPrep},
			},
		},
		{
			Id: StepSHC,
			Prompt: "<b>ASU Student Health Center</b> is usually your cheapest option.\n\n" +
				"From the plan: - Office visits at SHC have a <b>$15 copay</b> - Generic prescriptions are <b>$10</b> " +
				"- Urgent care at SHC is <b>$25</b>\n\n" +
				"Appointment/Walk-Ins: - Book online via the " +
				`<a href="https://asuportal.pointnclick.com/Mvc/Portal/Login">ASU Health Portal</a>` +
				" - Or call <b>480-965-3349</b> - Walk-ins accepted for urgent issues",
			Choices: []Choice{
				{Value: "script", Label: "Give me a call script", Next: StepScript},
				{Value: "walkin", Label: "What should I bring?", Next: StepPrep},
			},
		},
		{
			Id: StepScript,
			Prompt: "Call script: - \"Hi, I'm an ASU student on the student health plan (SHIP).\" " +
				"- \"I'd like to book the soonest available appointment for [your issue].\" " +
				"- \"Do you take UnitedHealthcare StudentResources?\" " +
				"- \"What will my copay be for this visit?\"",
			Choices: []Choice{
				{Value: "insurance", Label: "Where do I find my insurance info?", Next: StepInsurance},
				{Value: "walkin", Label: "What should I bring?", Next: StepPrep},
			},
		},
		{
			Id: StepPrep,
			Prompt: "Prep checklist: - Insurance card (digital or physical) - Photo ID (ASU ID or driver's license) " +
				"- List of symptoms and when they started - List of current medications - Payment method for your copay",
			Choices: []Choice{
				{Value: "insurance", Label: "Where do I find my insurance info?", Next: StepInsurance},
			},
		},
		{
			Id: StepInsurance,
			Prompt: "Your insurance card: - Log in at " +
				`<a href="https://www.uhcsr.com/asu">uhcsr.com/asu</a>` +
				" to view or print your card - Your member ID is on the front of the card " +
				"- The SHC front desk can also look you up by student ID\n\n" +
				"That's everything for booking. Ask me anything else about your coverage!",
			Terminal: true,
		},
	}

	out := make(map[StepId]Step, len(steps))
	for _, s := range steps {
		out[s.Id] = s
	}
	return out
}
