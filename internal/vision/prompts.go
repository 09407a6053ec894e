package vision

const systemPrompt = `You are an assistant that annotates travel and wildlife photographs. ` +
	`Always respond with a single JSON object and nothing else.`

const labelsPrompt = `List the distinct objects and scene elements visible in this photo. ` +
	`Respond with {"labels": ["..."]}. Use short lowercase noun phrases. ` +
	`Return an empty list if nothing is identifiable.`

const speciesPrompt = `Identify any wildlife species (birds, mammals, reptiles, insects) visible in this photo. ` +
	`Respond with {"species": ["..."]} using common English species names. ` +
	`Return an empty list if no wildlife is identifiable. Do not guess beyond what is visible.`

const facesPrompt = `Count the human faces visible in this photo. ` +
	`Respond with {"faces": N} where N is a non-negative integer.`

const captionPrompt = `Write one natural sentence describing this photo, suitable as an accessibility caption. ` +
	`Respond with {"caption": "..."}.`

const creativeCaptionPrompt = `Write one evocative sentence about this photo as if for a travel journal. ` +
	`Mention mood and setting, not camera details. Respond with {"caption": "..."}.`
