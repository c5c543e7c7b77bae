package imagegen

import (
	"fmt"
	"strings"
)

const isolateDesign = "Faithfully reproduce all details, colors and fonts. " +
	"The final output MUST be on a solid, neutral, single-color background (like pure white #FFFFFF) to make background removal easy. " +
	"Do NOT use a transparent background. " +
	"IMPORTANT: Do not include any part of the original product (like a t-shirt or mug) or any background elements."

// ClonePrompt asks for a clean print-quality copy of the design.
const ClonePrompt = "You are an expert image editing assistant. Analyze the main graphic design in the provided image. " +
	"Recreate an absolutely detailed, high-resolution, watermark-free, print-quality version of ONLY the central design elements. " +
	isolateDesign

// ColorPrompt asks for the dominant product color as a bare hex code.
const ColorPrompt = "You are an expert image editing assistant. Analyze the image of a product with a graphic on it. " +
	"Determine the dominant color of the product's material itself, ignoring the colors within the graphic design. " +
	"Provide only the hex color code for this dominant background color. " +
	"For example, if it's a black t-shirt with a white logo, you should return #000000. Your response must be only the hex code."

// DetailsPrompt asks for marketing copy about the design.
const DetailsPrompt = "Analyze the provided design. Your task is to generate marketing copy for a print-on-demand product featuring this design."

// Descriptions of the structured details fields sent with DetailsPrompt.
const (
	TitleHint       = "A short, catchy, and descriptive title (max 20 words)."
	DescriptionHint = "A compelling 2-3 sentence product description that highlights the style, mood, and potential appeal of the design."
	TagsHint        = "A single comma-separated string of 10-15 relevant SEO keywords or tags, before tags add #."
)

const defaultRedesign = "No custom instructions provided. Focus on faithful restoration."

// TransformPrompt isolates the design and reworks it per instructions.
func TransformPrompt(instructions string) string {
	return ClonePrompt + " Based on the user's instructions, completely transform the design in the provided image.\n" +
		fmt.Sprintf("User Instructions: %q", strings.TrimSpace(instructions))
}

// RedesignPrompt restores a low quality design, then applies instructions.
func RedesignPrompt(instructions string) string {
	instructions = strings.TrimSpace(instructions)
	if instructions == "" {
		instructions = defaultRedesign
	}
	lines := []string{
		"You are an expert design restoration specialist. The provided image is potentially low-quality, blurry, or old. Your task is to intelligently recognize and meticulously recreate the original, high-fidelity design.",
		"- Identify any logos, characters, text, or specific art styles, even if they are obscured, and recreate known designs with perfect accuracy.",
		"- If the design seems generic, infer the details and recreate it in a clean, sharp, print-quality style.",
		"- " + isolateDesign,
		"- If there are user instructions, apply them to the restored design.",
		fmt.Sprintf("User Instructions: %q", instructions),
	}
	return strings.Join(lines, "\n")
}

// MockupPrompt places the design on a product of the given color.
func MockupPrompt(productPrompt, hex string) string {
	parts := []string{
		"Take the provided design and create a photorealistic mockup.",
		strings.TrimSuffix(strings.TrimSpace(productPrompt), ".") + ".",
		fmt.Sprintf("IMPORTANT: The main color of the product (e.g., the t-shirt fabric, the mug's ceramic) MUST be the hex color: %s.", hex),
		"The design must be placed naturally on the product, conforming to its shape, texture, and lighting.",
		"The final image should look like a professional product photograph.",
	}
	return strings.Join(parts, " ")
}

// InpaintPrompt edits only the white area of the accompanying mask.
func InpaintPrompt(instructions string) string {
	lines := []string{
		"RULE: You are a master graphic designer and style chameleon. Your ONLY task is to perform a generative inpainting operation with perfect stylistic matching.",
		"You will receive a 'base image' to modify and a 'mask image' whose white area is the ONLY region of the base image to change.",
		"1. Match the font, text effects, colors, outlines, textures, lighting and artistic style around the masked area PERFECTLY.",
		fmt.Sprintf("2. Apply the user's instruction (%q) ONLY to the white area of the mask.", strings.TrimSpace(instructions)),
		"3. The black area of the mask MUST be preserved perfectly. ANY change outside the white mask is a CRITICAL FAILURE.",
		"4. Output ONLY the final edited image with the exact same dimensions as the base image. Do not add text or explanations.",
	}
	return strings.Join(lines, "\n")
}

// RemixPrompt blends part of a reference image into the masked area of a
// base image.
func RemixPrompt(instructions string) string {
	lines := []string{
		"You are a professional photo editing assistant. Your task is to perform an inpainting operation.",
		"You will receive three images: a 'target image' to edit, a 'source image' holding the element or style to add, and a 'mask image' whose white area is the exact region of the target to modify. The black area must remain untouched.",
		fmt.Sprintf("Based on the user's instruction: %q, seamlessly blend the relevant part of the source image into the white masked area of the target image.", strings.TrimSpace(instructions)),
		"IMPORTANT:",
		"- Maintain the original level of detail, lighting, and quality.",
		"- The output must be ONLY the final edited target image, with the EXACT same dimensions as the target image.",
		"- Do not include the source image or the mask in the output. Do not add any text or watermarks.",
	}
	return strings.Join(lines, "\n")
}
